// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/arunsworld/nursery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/hashring"
	"github.com/metalforge/conductor/pkg/model"
)

// NodeWork is the per-node body of a loop, run against a shared Task.
type NodeWork func(ctx context.Context, tk *task.Task) error

// Loop describes one periodic reconciliation loop: a tick interval, a
// candidate-node filter, and the work to run against every local node that
// still matches the filter once its Task is acquired.
type Loop struct {
	Name     string
	Interval time.Duration
	Purpose  string
	Filter   func() model.NodeFilter
	Sort     model.NodeSort
	Work     NodeWork
}

// Runner drives a set of Loops against a shared Node store, hash ring, and
// Task Manager, each on its own ticker, fanning per-node work out bounded
// by MaxWorkers.
type Runner struct {
	host       string
	store      model.NodeStore
	conductors model.ConductorStore
	ring       *hashring.Ring
	mgr        *task.Manager
	cfg        *Config
	publisher  Publisher

	logger *slog.Logger
	tracer trace.Tracer
}

// NewRunner builds a Runner. host is this conductor's hostname, used both
// for hash-ring ownership checks and as the Task acquisition identity.
// conductors and publisher may be nil: a nil conductors store disables
// OrphanRecoveryLoop/TakeoverLoop (both require the conductor registry), and
// a nil publisher makes SensorShipperLoop fail with ErrNoSensorPublisher if
// WithSensorShipper was used.
func NewRunner(host string, store model.NodeStore, conductors model.ConductorStore, ring *hashring.Ring, mgr *task.Manager, publisher Publisher, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		host:       host,
		store:      store,
		conductors: conductors,
		ring:       ring,
		mgr:        mgr,
		publisher:  publisher,
		cfg:        newConfig(opts...),
		logger:     logger.With("component", "periodic"),
		tracer:     otel.Tracer("periodic"),
	}
}

// Config returns the Runner's resolved configuration.
func (r *Runner) Config() *Config { return r.cfg }

// Run starts loops concurrently under a nursery, one child per loop, each
// ticking at its own interval until ctx is cancelled. Run blocks until
// every loop has exited; a loop never returns an error on its own (ticking
// continues across individual tick failures), so the nursery's error is
// always nil barring a panic recovery.
func (r *Runner) Run(ctx context.Context, loops []Loop) error {
	var children []func(ctx context.Context, errc chan error)
	for _, loop := range loops {
		if loop.Interval <= 0 {
			continue // zero-value Loop: its dependency (e.g. ConductorStore) was nil at construction
		}
		loop := loop
		children = append(children, func(ctx context.Context, errc chan error) {
			r.runLoop(ctx, loop)
			errc <- nil
		})
	}
	if len(children) == 0 {
		<-ctx.Done()
		return nil
	}
	return nursery.RunConcurrentlyWithContext(ctx, children...)
}

func (r *Runner) runLoop(ctx context.Context, loop Loop) {
	ticker := time.NewTicker(loop.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, loop)
		}
	}
}

func (r *Runner) tick(ctx context.Context, loop Loop) {
	ctx, span := r.tracer.Start(ctx, "periodic.tick", trace.WithAttributes(attribute.String("loop", loop.Name)))
	defer span.End()

	nodes, err := r.store.ListNodeInfo(ctx, loop.Filter(), loop.Sort)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list candidate nodes", "loop", loop.Name, "error", err)
		return
	}

	sem := make(chan struct{}, r.cfg.MaxWorkers)
	var wg sync.WaitGroup
	for _, node := range nodes {
		local, err := r.ring.NodeIsLocal(hashring.NodeKey(node.UUID, node.Driver), r.host)
		if err != nil || !local {
			continue
		}

		select {
		case sem <- struct{}{}:
		default:
			r.logger.WarnContext(ctx, "tick stopped early: no free periodic worker",
				"loop", loop.Name, "error", coreerrors.ErrNoFreeConductorWorker)
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(node *model.Node) {
			defer wg.Done()
			defer func() { <-sem }()
			r.runNode(ctx, loop, node)
		}(node)
	}
	wg.Wait()
}

func (r *Runner) runNode(ctx context.Context, loop Loop, node *model.Node) {
	tk, err := r.mgr.Acquire(ctx, node.UUID.String(), task.AcquireOptions{Shared: true, Purpose: loop.Purpose})
	if err != nil {
		if errors.Is(err, coreerrors.ErrNodeLocked) {
			return
		}
		r.logger.ErrorContext(ctx, "failed to acquire task", "loop", loop.Name, "node", node.UUID, "error", err)
		return
	}
	defer tk.Release()

	current := tk.Node()
	want := loop.Filter()
	if want.ProvisionState != "" && current.ProvisionState != want.ProvisionState {
		return
	}
	if want.Maintenance != nil && current.Maintenance != *want.Maintenance {
		return
	}
	if want.Reserved != nil && (current.Reservation != "") != *want.Reserved {
		return
	}

	if err := loop.Work(ctx, tk); err != nil {
		r.logger.ErrorContext(ctx, "loop work failed", "loop", loop.Name, "node", node.UUID, "error", err)
	}
}
