// SPDX-License-Identifier: BSD-3-Clause

// Package memstore is an in-memory implementation of every model store
// interface, for local development and the reference entrypoint. It has no
// durability and no cross-process visibility: a real deployment backs
// model.NodeStore/PortStore/PortgroupStore/ConductorStore with a database
// instead of importing this package.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/metalforge/conductor/pkg/model"
)

// Store holds every entity table in memory behind one mutex. It implements
// model.NodeStore, model.PortStore, model.PortgroupStore and
// model.ConductorStore all at once, the way a single database-backed
// adapter would.
type Store struct {
	mu sync.Mutex

	nodes      map[uuid.UUID]*model.Node
	reserved   map[uuid.UUID]string
	ports      map[uuid.UUID]*model.Port
	portgroups map[uuid.UUID]*model.Portgroup
	conductors map[string]*model.Conductor

	nextID int64
}

var (
	_ model.NodeStore      = (*Store)(nil)
	_ model.PortStore      = (*Store)(nil)
	_ model.PortgroupStore = (*Store)(nil)
	_ model.ConductorStore = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		nodes:      make(map[uuid.UUID]*model.Node),
		reserved:   make(map[uuid.UUID]string),
		ports:      make(map[uuid.UUID]*model.Port),
		portgroups: make(map[uuid.UUID]*model.Portgroup),
		conductors: make(map[string]*model.Conductor),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// SeedNode inserts n directly, for populating a freshly started process
// with inventory. It is not part of model.NodeStore: tests and the
// reference entrypoint call it before the conductor starts serving.
func (s *Store) SeedNode(n *model.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == 0 {
		n.ID = s.nextSeq()
	}
	cp := *n
	s.nodes[n.UUID] = &cp
}
