// SPDX-License-Identifier: BSD-3-Clause

package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/model"
)

// SeedPort inserts p directly, mirroring SeedNode.
func (s *Store) SeedPort(p *model.Port) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextSeq()
	}
	cp := *p
	s.ports[p.UUID] = &cp
}

// GetPort implements model.PortStore.
func (s *Store) GetPort(_ context.Context, portUUID uuid.UUID) (*model.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ports[portUUID]
	if !ok {
		return nil, coreerrors.ErrPortNotFound
	}
	cp := *p
	return &cp, nil
}

// ListPortsByNode implements model.PortStore.
func (s *Store) ListPortsByNode(_ context.Context, nodeUUID uuid.UUID) ([]*model.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Port
	for _, p := range s.ports {
		if p.NodeUUID == nodeUUID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdatePort implements model.PortStore's compare-and-swap.
func (s *Store) UpdatePort(_ context.Context, portUUID uuid.UUID, expectedVersion int64, diff model.NodeDiff) (*model.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.ports[portUUID]
	if !ok {
		return nil, coreerrors.ErrPortNotFound
	}
	if p.Version != expectedVersion {
		return nil, coreerrors.ErrStorageData
	}

	if node, ok := s.nodes[p.NodeUUID]; ok {
		if _, touches := diff["address"]; touches {
			if err := model.CheckPortAddressMutable(node); err != nil {
				return nil, err
			}
		}
		if _, touches := diff["pxe_enabled"]; touches {
			if err := model.CheckPXEFlagMutable(node); err != nil {
				return nil, err
			}
		}
	}

	updated := *p
	for k, v := range diff {
		switch k {
		case "address":
			updated.Address, _ = v.(string)
		case "pxe_enabled":
			updated.PXEEnabled, _ = v.(bool)
		case "portgroup_uuid":
			updated.PortgroupUUID = asUUID(v)
		case "local_link_connection":
			updated.LocalLinkConn, _ = v.(map[string]any)
		case "physical_network":
			updated.PhysicalNetwork, _ = v.(string)
		case "internal_info":
			updated.InternalInfo, _ = v.(map[string]any)
		}
	}
	updated.Version++
	s.ports[portUUID] = &updated
	cp := updated
	return &cp, nil
}

// DeletePort implements model.PortStore.
func (s *Store) DeletePort(_ context.Context, portUUID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ports[portUUID]; !ok {
		return coreerrors.ErrPortNotFound
	}
	delete(s.ports, portUUID)
	return nil
}
