// SPDX-License-Identifier: BSD-3-Clause

package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/model"
)

// GetNodeByIdentity implements model.NodeStore. identity may be either the
// node's UUID or its name.
func (s *Store) GetNodeByIdentity(_ context.Context, identity string) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, err := uuid.Parse(identity); err == nil {
		if n, ok := s.nodes[id]; ok {
			return s.snapshot(n), nil
		}
		return nil, coreerrors.ErrNodeNotFound
	}
	for _, n := range s.nodes {
		if n.Name == identity {
			return s.snapshot(n), nil
		}
	}
	return nil, coreerrors.ErrNodeNotFound
}

// ListNodeInfo implements model.NodeStore.
func (s *Store) ListNodeInfo(_ context.Context, filter model.NodeFilter, sort model.NodeSort) ([]*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if filter.ProvisionState != "" && n.ProvisionState != filter.ProvisionState {
			continue
		}
		if filter.Driver != "" && n.Driver != filter.Driver {
			continue
		}
		if filter.Maintenance != nil && n.Maintenance != *filter.Maintenance {
			continue
		}
		reservation := s.reserved[n.UUID]
		if filter.Reserved != nil && (reservation != "") != *filter.Reserved {
			continue
		}
		if !filter.ProvisionedBefore.IsZero() && !n.ProvisionUpdatedAt.Before(filter.ProvisionedBefore) {
			continue
		}
		out = append(out, s.snapshot(n))
	}
	sortNodes(out, sort)
	return out, nil
}

func sortNodes(nodes []*model.Node, sort model.NodeSort) {
	if sort.Column == "" {
		return
	}
	less := func(i, j int) bool {
		var r bool
		switch sort.Column {
		case "provision_updated_at":
			r = nodes[i].ProvisionUpdatedAt.Before(nodes[j].ProvisionUpdatedAt)
		case "name":
			r = nodes[i].Name < nodes[j].Name
		default:
			r = nodes[i].UUID.String() < nodes[j].UUID.String()
		}
		if sort.Descending {
			return !r
		}
		return r
	}
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}

// AtomicReserve implements model.NodeStore.
func (s *Store) AtomicReserve(_ context.Context, nodeUUID uuid.UUID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[nodeUUID]; !ok {
		return coreerrors.ErrNodeNotFound
	}
	if existing, ok := s.reserved[nodeUUID]; ok && existing != "" {
		return coreerrors.ErrNodeLocked
	}
	s.reserved[nodeUUID] = host
	return nil
}

// AtomicRelease implements model.NodeStore.
func (s *Store) AtomicRelease(_ context.Context, nodeUUID uuid.UUID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reserved[nodeUUID] == host {
		delete(s.reserved, nodeUUID)
	}
	return nil
}

// UpdateNode implements model.NodeStore's compare-and-swap.
func (s *Store) UpdateNode(_ context.Context, nodeUUID uuid.UUID, expectedVersion int64, diff model.NodeDiff) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeUUID]
	if !ok {
		return nil, coreerrors.ErrNodeNotFound
	}
	if n.Version != expectedVersion {
		return nil, coreerrors.ErrStorageData
	}

	updated := *n
	for k, v := range diff {
		switch k {
		case "name":
			updated.Name, _ = v.(string)
		case "instance_uuid":
			updated.InstanceUUID = asUUID(v)
		case "driver_info":
			updated.DriverInfo, _ = v.(map[string]any)
		case "driver_internal_info":
			updated.DriverInternalInfo, _ = v.(map[string]any)
		case "instance_info":
			updated.InstanceInfo, _ = v.(map[string]any)
		case "provision_state":
			updated.ProvisionState, _ = v.(string)
			updated.ProvisionUpdatedAt = time.Now()
		case "target_provision_state":
			updated.TargetProvisionState, _ = v.(string)
		case "last_error":
			updated.LastError, _ = v.(string)
		case "maintenance":
			updated.Maintenance, _ = v.(bool)
		case "maintenance_reason":
			updated.MaintenanceReason, _ = v.(string)
		case "power_state":
			updated.PowerState, _ = v.(string)
		case "target_power_state":
			updated.TargetPowerState, _ = v.(string)
		case "conductor_affinity":
			updated.ConductorAffinity, _ = v.(string)
		case "deploy_step":
			updated.DeployStep, _ = v.(*model.Step)
		case "clean_step":
			updated.CleanStep, _ = v.(*model.Step)
		case "service_step":
			updated.ServiceStep, _ = v.(*model.Step)
		case "inspection_started_at":
			updated.InspectionStartedAt, _ = v.(time.Time)
		}
	}
	updated.Version++
	s.nodes[nodeUUID] = &updated
	return s.snapshot(&updated), nil
}

// asUUID accepts either a uuid.UUID (set by in-process callers) or a string
// (set by a diff that arrived JSON-decoded over the RPC surface).
func asUUID(v any) uuid.UUID {
	switch val := v.(type) {
	case uuid.UUID:
		return val
	case string:
		id, err := uuid.Parse(val)
		if err != nil {
			return uuid.Nil
		}
		return id
	default:
		return uuid.Nil
	}
}

// snapshot returns a defensive copy of n with its current reservation
// filled in, so callers can't mutate store state through the pointer they
// receive.
func (s *Store) snapshot(n *model.Node) *model.Node {
	cp := *n
	cp.Reservation = s.reserved[n.UUID]
	return &cp
}
