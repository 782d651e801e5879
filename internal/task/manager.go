// SPDX-License-Identifier: BSD-3-Clause

package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/fsm"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// AcquireOptions parameterises Manager.Acquire.
type AcquireOptions struct {
	// Shared requests a non-exclusive acquisition: no reservation is
	// written, other shared readers are not excluded, and mutating driver
	// operations must not be called through the resulting Task.
	Shared bool
	// Purpose is a short human-readable label recorded in logs and traces,
	// e.g. "power-sync" or "deploy".
	Purpose string
}

// Manager acquires and releases per-node Tasks. It is the sole owner of the
// conductor's identity (hostname), the durable Node store, the driver
// registry, the shared provisioning FSM template, and the worker pool Tasks
// hand continuations to.
type Manager struct {
	cfg    *Config
	store  model.NodeStore
	ports  model.PortStore
	groups model.PortgroupStore

	registry *driver.Registry
	template *fsm.FSM
	pool     WorkerPool

	logger *slog.Logger
	tracer trace.Tracer
}

// NewManager builds a Manager. template is the shared provisioning FSM
// built once at startup (see pkg/provision.NewMachine); every acquired
// Task gets its own Copy positioned at the Node's current state.
func NewManager(
	store model.NodeStore,
	ports model.PortStore,
	groups model.PortgroupStore,
	registry *driver.Registry,
	template *fsm.FSM,
	pool WorkerPool,
	logger *slog.Logger,
	opts ...Option,
) *Manager {
	return &Manager{
		cfg:      newConfig(opts...),
		store:    store,
		ports:    ports,
		groups:   groups,
		registry: registry,
		template: template,
		pool:     pool,
		logger:   logger,
		tracer:   otel.Tracer("task"),
	}
}

// Acquire loads the Node identified by nodeIdentity (UUID or name) and
// returns a Task bundling it with its loaded Ports, Portgroups, driver
// Bundle, and a positioned provisioning FSM. Exclusive acquisition retries
// AtomicReserve up to the configured budget before failing with
// coreerrors.ErrNodeLocked.
func (m *Manager) Acquire(ctx context.Context, nodeIdentity string, opts AcquireOptions) (*Task, error) {
	ctx, span := m.tracer.Start(ctx, "task.Acquire")
	defer span.End()

	node, err := m.store.GetNodeByIdentity(ctx, nodeIdentity)
	if err != nil {
		return nil, err
	}

	if !opts.Shared {
		if err := m.reserveWithRetry(ctx, node.UUID, m.cfg.Host); err != nil {
			return nil, err
		}
		node, err = m.store.GetNodeByIdentity(ctx, nodeIdentity)
		if err != nil {
			return nil, fmt.Errorf("%w: reloading node after reservation: %w", coreerrors.ErrInternal, err)
		}
	}

	bundle, err := m.registry.LoadDriver(node.Driver)
	if err != nil {
		if !opts.Shared {
			_ = m.store.AtomicRelease(ctx, node.UUID, m.cfg.Host)
		}
		return nil, err
	}

	var ports []*model.Port
	if m.ports != nil {
		ports, err = m.ports.ListPortsByNode(ctx, node.UUID)
		if err != nil {
			if !opts.Shared {
				_ = m.store.AtomicRelease(ctx, node.UUID, m.cfg.Host)
			}
			return nil, err
		}
	}

	var groups []*model.Portgroup
	if m.groups != nil {
		groups, err = m.groups.ListPortgroupsByNode(ctx, node.UUID)
		if err != nil {
			if !opts.Shared {
				_ = m.store.AtomicRelease(ctx, node.UUID, m.cfg.Host)
			}
			return nil, err
		}
	}

	machine, err := provision.NewNodeMachine(m.template, node.ProvisionState)
	if err != nil {
		if !opts.Shared {
			_ = m.store.AtomicRelease(ctx, node.UUID, m.cfg.Host)
		}
		return nil, err
	}

	return &Task{
		mgr:        m,
		ctx:        ctx,
		host:       m.cfg.Host,
		purpose:    opts.Purpose,
		shared:     opts.Shared,
		node:       node,
		ports:      ports,
		portgroups: groups,
		bundle:     bundle,
		machine:    machine,
		logger:     m.logger.With("node", node.UUID, "purpose", opts.Purpose),
		tracer:     m.tracer,
	}, nil
}

// reserveWithRetry attempts AtomicReserve up to cfg.MaxLockRetries times
// with exponential backoff, surfacing coreerrors.ErrNodeLocked once the
// budget is exhausted.
func (m *Manager) reserveWithRetry(ctx context.Context, nodeUUID uuid.UUID, host string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.LockRetryBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		rerr := m.store.AtomicReserve(ctx, nodeUUID, host)
		if rerr != nil {
			return struct{}{}, rerr
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(m.cfg.MaxLockRetries)))
	if err != nil {
		return fmt.Errorf("%w: node %s: %w", coreerrors.ErrNodeLocked, nodeUUID, err)
	}
	return nil
}
