// SPDX-License-Identifier: BSD-3-Clause

package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/model"
)

// SeedPortgroup inserts pg directly, mirroring SeedNode.
func (s *Store) SeedPortgroup(pg *model.Portgroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pg.ID == 0 {
		pg.ID = s.nextSeq()
	}
	cp := *pg
	s.portgroups[pg.UUID] = &cp
}

// GetPortgroup implements model.PortgroupStore.
func (s *Store) GetPortgroup(_ context.Context, portgroupUUID uuid.UUID) (*model.Portgroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pg, ok := s.portgroups[portgroupUUID]
	if !ok {
		return nil, coreerrors.ErrPortgroupNotFound
	}
	cp := *pg
	return &cp, nil
}

// ListPortgroupsByNode implements model.PortgroupStore.
func (s *Store) ListPortgroupsByNode(_ context.Context, nodeUUID uuid.UUID) ([]*model.Portgroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Portgroup
	for _, pg := range s.portgroups {
		if pg.NodeUUID == nodeUUID {
			cp := *pg
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdatePortgroup implements model.PortgroupStore's compare-and-swap.
func (s *Store) UpdatePortgroup(_ context.Context, portgroupUUID uuid.UUID, expectedVersion int64, diff model.NodeDiff) (*model.Portgroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pg, ok := s.portgroups[portgroupUUID]
	if !ok {
		return nil, coreerrors.ErrPortgroupNotFound
	}
	if pg.Version != expectedVersion {
		return nil, coreerrors.ErrStorageData
	}

	updated := *pg
	for k, v := range diff {
		switch k {
		case "name":
			updated.Name, _ = v.(string)
		case "address":
			updated.Address, _ = v.(string)
		case "mode":
			updated.Mode, _ = v.(string)
		}
	}
	updated.Version++
	s.portgroups[portgroupUUID] = &updated
	cp := updated
	return &cp, nil
}

// DeletePortgroup implements model.PortgroupStore.
func (s *Store) DeletePortgroup(_ context.Context, portgroupUUID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.portgroups[portgroupUUID]; !ok {
		return coreerrors.ErrPortgroupNotFound
	}
	delete(s.portgroups, portgroupUUID)
	return nil
}
