// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cirello.io/oversight/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/internal/executor"
	"github.com/metalforge/conductor/internal/periodic"
	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/fsm"
	"github.com/metalforge/conductor/pkg/hashring"
	applog "github.com/metalforge/conductor/pkg/log"
	"github.com/metalforge/conductor/pkg/model"
)

// Conductor is one conductor process: it owns a Task Manager bound to two
// bounded worker pools, a Step Executor, the periodic reconciliation loops,
// and the NATS micro RPC surface external callers (and other conductors,
// when forwarding) use to reach it.
type Conductor struct {
	cfg *Config

	nodes      model.NodeStore
	ports      model.PortStore
	groups     model.PortgroupStore
	conductors model.ConductorStore
	registry   *driver.Registry

	ring         *hashring.Ring
	mgr          *task.Manager
	exec         *executor.Executor
	primaryPool  *SemaphorePool
	reservedPool *SemaphorePool
	reservedMgr  *task.Manager
	periodic     *periodic.Runner

	nc  *nats.Conn
	svc micro.Service

	logger *slog.Logger
	tracer trace.Tracer
}

// New builds a Conductor. template is the shared provisioning FSM built
// once at process start (see pkg/provision.NewMachine); every acquired Task
// gets its own positioned copy. publisher may be nil, in which case the
// sensor-shipper loop is left disabled regardless of config.
func New(
	nodes model.NodeStore,
	ports model.PortStore,
	groups model.PortgroupStore,
	conductors model.ConductorStore,
	registry *driver.Registry,
	template *fsm.FSM,
	exec *executor.Executor,
	nc *nats.Conn,
	publisher periodic.Publisher,
	logger *slog.Logger,
	opts ...Option,
) (*Conductor, error) {
	cfg := newConfig(opts...)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "conductor", "host", cfg.Host)

	primaryPool := NewSemaphorePool(cfg.PrimaryPoolSize)
	reservedPool := NewSemaphorePool(cfg.ReservedPoolSize)
	ring := hashring.New()

	mgr := task.NewManager(nodes, ports, groups, registry, template, primaryPool, logger, task.WithHost(cfg.Host))
	reservedMgr := task.NewManager(nodes, ports, groups, registry, template, reservedPool, logger, task.WithHost(cfg.Host))

	runner := periodic.NewRunner(cfg.Host, nodes, conductors, ring, mgr, publisher, logger,
		periodic.WithConductorLivenessThreshold(cfg.ConductorLivenessThreshold))

	return &Conductor{
		cfg:          cfg,
		nodes:        nodes,
		ports:        ports,
		groups:       groups,
		conductors:   conductors,
		registry:     registry,
		ring:         ring,
		mgr:          mgr,
		exec:         exec,
		primaryPool:  primaryPool,
		reservedPool: reservedPool,
		reservedMgr:  reservedMgr,
		periodic:     runner,
		nc:           nc,
		logger:       logger,
		tracer:       otel.Tracer("conductor"),
	}, nil
}

// Run executes the Conductor Service startup sequence and then blocks,
// supervising its background processes, until ctx is cancelled:
//
//  1. register/update this host's Conductor registry row
//  2. load the hash ring from current membership
//  3. clear this host's own stale reservations and crash-inherited
//     target_power_state left by a previous process
//  4. start the RPC surface and periodic loops under supervision
//  5. heartbeat the registry row until shutdown
func (c *Conductor) Run(ctx context.Context) error {
	if _, err := c.conductors.RegisterConductor(ctx, c.cfg.Host, c.cfg.HardwareTypes); err != nil {
		return fmt.Errorf("register conductor: %w", err)
	}

	if err := c.rebuildRing(ctx); err != nil {
		return fmt.Errorf("initial hash ring load: %w", err)
	}

	if err := c.clearStaleState(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear stale state from a prior crash", "error", err)
	}

	svc, err := c.registerRPC(c.nc)
	if err != nil {
		return fmt.Errorf("register RPC surface: %w", err)
	}
	defer func() { _ = svc.Stop() }()
	c.svc = svc

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(applog.NewOversightLogger(c.logger)),
	)

	if err := tree.Add(c.heartbeatProcess(), oversight.Transient(), oversight.Timeout(c.cfg.ShutdownTimeout), "heartbeat"); err != nil {
		return fmt.Errorf("add heartbeat process: %w", err)
	}
	if err := tree.Add(c.ringRefreshProcess(), oversight.Transient(), oversight.Timeout(c.cfg.ShutdownTimeout), "ring-refresh"); err != nil {
		return fmt.Errorf("add ring refresh process: %w", err)
	}
	if err := tree.Add(c.periodicProcess(), oversight.Transient(), oversight.Timeout(c.cfg.ShutdownTimeout), "periodic"); err != nil {
		return fmt.Errorf("add periodic process: %w", err)
	}

	c.logger.InfoContext(ctx, "conductor started", "hardware_types", c.cfg.HardwareTypes)
	return tree.Start(ctx)
}

func (c *Conductor) heartbeatProcess() oversight.ChildProcess {
	return func(ctx context.Context) error {
		runHeartbeat(ctx, c.conductors, c.cfg.Host, c.cfg.HeartbeatInterval, c.logger)
		return nil
	}
}

func (c *Conductor) periodicProcess() oversight.ChildProcess {
	return func(ctx context.Context) error {
		return c.periodic.Run(ctx, c.loops())
	}
}

// loops assembles the full periodic reconciliation loop set this conductor
// runs; the sensor shipper is appended only when a publisher was wired in.
func (c *Conductor) loops() []periodic.Loop {
	loops := []periodic.Loop{
		c.periodic.PowerSyncLoop(),
		c.periodic.DeployTimeoutSweepLoop(),
		c.periodic.CleanTimeoutSweepLoop(),
		c.periodic.InspectTimeoutSweepLoop(),
		c.periodic.OrphanRecoveryLoop(),
		c.periodic.TakeoverLoop(),
	}
	if c.periodic.Config().SensorShipperEnabled {
		loops = append(loops, c.periodic.SensorShipperLoop())
	}
	return loops
}

// ringRefreshProcess periodically reloads Conductor registry membership
// into the hash ring so joins/departures of other conductors rebalance
// node ownership without a restart.
func (c *Conductor) ringRefreshProcess() oversight.ChildProcess {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(c.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := c.rebuildRing(ctx); err != nil {
					c.logger.ErrorContext(ctx, "failed to refresh hash ring", "error", err)
				}
			}
		}
	}
}

func (c *Conductor) rebuildRing(ctx context.Context) error {
	live, err := c.conductors.ListConductors(ctx)
	if err != nil {
		return err
	}
	hosts := make([]string, 0, len(live))
	now := time.Now()
	for _, conductor := range live {
		if !conductor.Offline(now, c.cfg.ConductorLivenessThreshold) {
			hosts = append(hosts, conductor.Hostname)
		}
	}
	c.ring.Rebuild(hosts)
	return nil
}

// clearStaleState clears this host's own reservations and any
// target_power_state left behind if the previous process holding this
// hostname crashed mid-operation: both would otherwise wedge the affected
// nodes, since no other conductor will ever touch a reservation held by a
// live hostname.
func (c *Conductor) clearStaleState(ctx context.Context) error {
	reserved := true
	nodes, err := c.nodes.ListNodeInfo(ctx, model.NodeFilter{Reserved: &reserved}, model.NodeSort{})
	if err != nil {
		return fmt.Errorf("listing reserved nodes: %w", err)
	}

	for _, node := range nodes {
		if node.Reservation != c.cfg.Host {
			continue
		}
		if err := c.nodes.AtomicRelease(ctx, node.UUID, c.cfg.Host); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear stale reservation", "node", node.UUID, "error", err)
			continue
		}
		if node.TargetPowerState != "" {
			if _, err := c.nodes.UpdateNode(ctx, node.UUID, node.Version, model.NodeDiff{"target_power_state": ""}); err != nil {
				c.logger.ErrorContext(ctx, "failed to clear stale target_power_state", "node", node.UUID, "error", err)
			}
		}
	}
	return nil
}

// NodeIsLocal reports whether nodeUUID/driver is owned by this host on the
// current hash ring.
func (c *Conductor) NodeIsLocal(nodeUUID uuid.UUID, driverName string) (bool, error) {
	return c.ring.NodeIsLocal(hashring.NodeKey(nodeUUID, driverName), c.cfg.Host)
}
