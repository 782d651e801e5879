// SPDX-License-Identifier: BSD-3-Clause

package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/fsm"
	"github.com/metalforge/conductor/pkg/model"
)

var _ driver.TaskContext = (*Task)(nil)

// ProcessEventOptions parameterises Task.ProcessEvent.
type ProcessEventOptions struct {
	// Callback, if set, is spawned on the worker pool once the FSM
	// transition has been applied, under the same reservation.
	Callback func(ctx context.Context) error
	// ErrorHandler is invoked with the error that caused the transition to
	// be reverted, so the caller can record last_error.
	ErrorHandler func(ctx context.Context, err error)
}

// Task bundles a Node, its loaded Ports and Portgroups, the driver Bundle
// for its hardware type, and a provisioning FSM positioned at its current
// state, all held under a shared or exclusive reservation.
type Task struct {
	mgr     *Manager
	ctx     context.Context
	host    string
	purpose string

	mu       sync.Mutex
	shared   bool
	released bool
	spawned  bool

	node       *model.Node
	ports      []*model.Port
	portgroups []*model.Portgroup
	bundle     *driver.Bundle
	machine    *fsm.FSM

	logger *slog.Logger
	tracer trace.Tracer
}

// Context returns the request context the task was acquired under. It
// satisfies driver.TaskContext.
func (t *Task) Context() context.Context { return t.ctx }

// Node returns the Node this task holds a lock on. It satisfies
// driver.TaskContext.
func (t *Task) Node() *model.Node { return t.node }

// Bundle returns the driver Bundle loaded for the Node's hardware type.
func (t *Task) Bundle() *driver.Bundle { return t.bundle }

// Machine returns the provisioning FSM positioned at the Node's current
// provision state.
func (t *Task) Machine() *fsm.FSM { return t.machine }

// Ports returns the Node's loaded Ports.
func (t *Task) Ports() []*model.Port { return t.ports }

// Portgroups returns the Node's loaded Portgroups.
func (t *Task) Portgroups() []*model.Portgroup { return t.portgroups }

// Shared reports whether this task holds only a shared (non-exclusive)
// acquisition.
func (t *Task) Shared() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shared
}

// UpgradeLock promotes a shared task to exclusive in place, using the same
// retry/backoff as Acquire. It is a no-op if the task is already exclusive.
func (t *Task) UpgradeLock(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrAlreadyReleased
	}
	if !t.shared {
		return nil
	}

	if err := t.mgr.reserveWithRetry(ctx, t.node.UUID, t.host); err != nil {
		return err
	}

	node, err := t.mgr.store.GetNodeByIdentity(ctx, t.node.UUID.String())
	if err != nil {
		return fmt.Errorf("%w: reloading node after lock upgrade: %w", coreerrors.ErrInternal, err)
	}
	t.node = node
	t.shared = false
	return nil
}

// UpdateNode applies diff to the task's node under compare-and-swap against
// the version currently held, replacing the task's view of the node with
// the store's response on success.
func (t *Task) UpdateNode(ctx context.Context, diff model.NodeDiff) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrAlreadyReleased
	}
	updated, err := t.mgr.store.UpdateNode(ctx, t.node.UUID, t.node.Version, diff)
	if err != nil {
		return err
	}
	t.node = updated
	return nil
}

// release performs the actual reservation clear. fromContinuation is true
// only when called from the goroutine SpawnAfter scheduled; a synchronous
// caller's own deferred Release must be a no-op once a continuation has
// taken ownership, since the reservation now outlives the caller's stack.
func (t *Task) release(ctx context.Context, fromContinuation bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}
	if t.spawned && !fromContinuation {
		return
	}
	t.released = true

	if t.shared {
		return
	}
	if err := t.mgr.store.AtomicRelease(context.WithoutCancel(ctx), t.node.UUID, t.host); err != nil {
		t.logger.ErrorContext(ctx, "failed to release node reservation",
			"node", t.node.UUID, "host", t.host, "error", err)
	}
}

// Release clears the task's reservation if it still belongs to this
// conductor. It is idempotent and safe to call from a deferred statement on
// every exit path, including after a panic recovers further up the stack.
func (t *Task) Release() {
	t.release(t.ctx, false)
}

// SpawnAfter schedules fn to run on the conductor worker pool after the
// current synchronous section returns, transferring ownership of the
// reservation to the background continuation: fn's Task.Release call (via
// the wrapper installed here) is the one that actually clears it. If
// scheduling fails the caller must roll back any state change it already
// made and treat this as coreerrors.ErrNoFreeConductorWorker.
func (t *Task) SpawnAfter(fn func(ctx context.Context) error) error {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return ErrAlreadyReleased
	}
	if t.spawned {
		t.mu.Unlock()
		return ErrAlreadySpawned
	}
	t.spawned = true
	t.mu.Unlock()

	err := t.mgr.pool.Submit(func(ctx context.Context) {
		defer t.release(ctx, true)
		if ferr := fn(ctx); ferr != nil {
			t.logger.ErrorContext(ctx, "spawned task continuation failed",
				"node", t.node.UUID, "error", ferr)
		}
	})
	if err != nil {
		t.mu.Lock()
		t.spawned = false
		t.mu.Unlock()
		return fmt.Errorf("%w: %w", coreerrors.ErrNoFreeConductorWorker, err)
	}
	return nil
}

// ProcessEvent atomically applies an FSM transition and, if callback is
// set, spawns it under the same reservation. If spawning fails the FSM
// transition is reverted and ErrorHandler is invoked with the error that
// caused the revert.
func (t *Task) ProcessEvent(ctx context.Context, event string, opts ProcessEventOptions) error {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return ErrAlreadyReleased
	}
	prevState := t.machine.CurrentState()
	prevTarget := t.node.TargetProvisionState
	if err := t.machine.ProcessEvent(ctx, event); err != nil {
		t.mu.Unlock()
		return err
	}

	newState := t.machine.CurrentState()
	updated, err := t.mgr.store.UpdateNode(ctx, t.node.UUID, t.node.Version, model.NodeDiff{
		"provision_state":        newState,
		"target_provision_state": t.machine.TargetState(),
	})
	if err != nil {
		if revertErr := t.machine.Initialize(prevState); revertErr != nil {
			t.logger.ErrorContext(ctx, "failed to revert fsm transition after persist failure",
				"node", t.node.UUID, "from", prevState, "error", revertErr)
		}
		t.mu.Unlock()
		return err
	}
	t.node = updated
	t.mu.Unlock()

	if opts.Callback == nil {
		return nil
	}

	if err := t.SpawnAfter(opts.Callback); err != nil {
		t.mu.Lock()
		if revertErr := t.machine.Initialize(prevState); revertErr != nil {
			t.logger.ErrorContext(ctx, "failed to revert fsm transition",
				"node", t.node.UUID, "from", prevState, "error", revertErr)
		}
		reverted, revertErr := t.mgr.store.UpdateNode(ctx, t.node.UUID, t.node.Version, model.NodeDiff{
			"provision_state":        prevState,
			"target_provision_state": prevTarget,
		})
		if revertErr != nil {
			t.logger.ErrorContext(ctx, "failed to persist fsm revert",
				"node", t.node.UUID, "to", prevState, "error", revertErr)
		} else {
			t.node = reverted
		}
		t.mu.Unlock()
		if opts.ErrorHandler != nil {
			opts.ErrorHandler(ctx, err)
		}
		return err
	}
	return nil
}
