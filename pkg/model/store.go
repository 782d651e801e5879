// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NodeFilter narrows a ListNodeInfo query. Zero-valued fields are not applied.
type NodeFilter struct {
	ProvisionState   string
	Reserved         *bool
	Maintenance      *bool
	ProvisionedBefore time.Time
	Driver            string
}

// NodeSort orders a ListNodeInfo query.
type NodeSort struct {
	Column     string
	Descending bool
}

// NodeDiff is a partial update applied via UpdateNode's compare-and-swap.
type NodeDiff map[string]any

// NodeStore is the durable collaborator for Node persistence and atomic
// reservation. The conductor never talks to a database directly; it only
// ever calls through this interface.
type NodeStore interface {
	GetNodeByIdentity(ctx context.Context, identity string) (*Node, error)
	ListNodeInfo(ctx context.Context, filter NodeFilter, sort NodeSort) ([]*Node, error)

	// AtomicReserve writes host into the node's reservation column using a
	// conditional update ("update where reservation is null"). It returns
	// coreerrors.ErrNodeLocked if the row is already reserved by someone else.
	AtomicReserve(ctx context.Context, nodeUUID uuid.UUID, host string) error
	// AtomicRelease clears reservation only if it still equals host.
	AtomicRelease(ctx context.Context, nodeUUID uuid.UUID, host string) error

	// UpdateNode applies diff under compare-and-swap against
	// expectedVersion, returning the updated Node on success.
	UpdateNode(ctx context.Context, nodeUUID uuid.UUID, expectedVersion int64, diff NodeDiff) (*Node, error)
}

// PortStore is the durable collaborator for Port persistence.
type PortStore interface {
	GetPort(ctx context.Context, portUUID uuid.UUID) (*Port, error)
	ListPortsByNode(ctx context.Context, nodeUUID uuid.UUID) ([]*Port, error)
	UpdatePort(ctx context.Context, portUUID uuid.UUID, expectedVersion int64, diff NodeDiff) (*Port, error)
	DeletePort(ctx context.Context, portUUID uuid.UUID) error
}

// PortgroupStore is the durable collaborator for Portgroup persistence.
type PortgroupStore interface {
	GetPortgroup(ctx context.Context, portgroupUUID uuid.UUID) (*Portgroup, error)
	ListPortgroupsByNode(ctx context.Context, nodeUUID uuid.UUID) ([]*Portgroup, error)
	UpdatePortgroup(ctx context.Context, portgroupUUID uuid.UUID, expectedVersion int64, diff NodeDiff) (*Portgroup, error)
	DeletePortgroup(ctx context.Context, portgroupUUID uuid.UUID) error
}

// ConductorStore is the durable collaborator for the Conductor registry.
type ConductorStore interface {
	RegisterConductor(ctx context.Context, hostname string, hardwareTypes []string) (*Conductor, error)
	Heartbeat(ctx context.Context, hostname string) error
	ListConductors(ctx context.Context) ([]*Conductor, error)
	ListOfflineConductors(ctx context.Context, threshold time.Duration) ([]*Conductor, error)
}
