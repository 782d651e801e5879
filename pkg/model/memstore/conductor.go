// SPDX-License-Identifier: BSD-3-Clause

package memstore

import (
	"context"
	"time"

	"github.com/metalforge/conductor/pkg/model"
)

// RegisterConductor implements model.ConductorStore: an upsert keyed by
// hostname, refreshing hardware types and the heartbeat timestamp.
func (s *Store) RegisterConductor(_ context.Context, hostname string, hardwareTypes []string) (*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conductors[hostname]
	if !ok {
		c = &model.Conductor{ID: s.nextSeq(), Hostname: hostname}
		s.conductors[hostname] = c
	}
	c.HardwareTypes = hardwareTypes
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

// Heartbeat implements model.ConductorStore.
func (s *Store) Heartbeat(_ context.Context, hostname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conductors[hostname]
	if !ok {
		return nil
	}
	c.UpdatedAt = time.Now()
	return nil
}

// ListConductors implements model.ConductorStore.
func (s *Store) ListConductors(_ context.Context) ([]*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conductor, 0, len(s.conductors))
	for _, c := range s.conductors {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// ListOfflineConductors implements model.ConductorStore.
func (s *Store) ListOfflineConductors(_ context.Context, threshold time.Duration) ([]*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var out []*model.Conductor
	for _, c := range s.conductors {
		if c.Offline(now, threshold) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
