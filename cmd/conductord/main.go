// SPDX-License-Identifier: BSD-3-Clause

// Command conductord runs one conductor process: it connects to NATS,
// builds the driver registry and provisioning machine, and serves the RPC
// surface and background reconciliation loops until terminated.
//
// The store wiring here is the in-memory reference implementation
// (pkg/model/memstore) seeded with a handful of mock nodes running the
// mock hardware type (pkg/driver/mock) — enough to exercise every RPC
// operation end to end without a database or real BMCs. A production
// deployment swaps memstore.Store for a real database-backed
// implementation of the same model.NodeStore/PortStore/PortgroupStore/
// ConductorStore interfaces; nothing else in this file changes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/metalforge/conductor/internal/conductor"
	"github.com/metalforge/conductor/internal/executor"
	"github.com/metalforge/conductor/pkg/configdrive"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/driver/mock"
	applog "github.com/metalforge/conductor/pkg/log"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/model/memstore"
	"github.com/metalforge/conductor/pkg/provision"
	"github.com/metalforge/conductor/pkg/telemetry"
)

func main() {
	logger := applog.GetGlobalLogger().With("service", "conductord")

	natsURL := envOr("CONDUCTOR_NATS_URL", nats.DefaultURL)
	host := envOr("CONDUCTOR_HOST", hostnameOrFallback())

	telemetryProvider, err := telemetry.NewProvider(
		telemetry.WithServiceName("conductord"),
		telemetry.WithResourceAttribute("host", host),
	)
	if err != nil {
		logger.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	nc, err := nats.Connect(natsURL,
		nats.Name("conductord-"+host),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		logger.Error("failed to connect to NATS", "url", natsURL, "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	registry := driver.NewRegistry()
	if err := registry.Register(mock.HardwareType, mock.NewBundle()); err != nil {
		logger.Error("failed to register hardware type", "error", err)
		os.Exit(1)
	}

	template, err := provision.NewMachine(logger)
	if err != nil {
		logger.Error("failed to build provisioning machine", "error", err)
		os.Exit(1)
	}

	store := memstore.New()
	seedInventory(store)

	exec := executor.New(&configdrive.ISOBuilder{}, nil, logger)

	c, err := conductor.New(
		store, store, store, store,
		registry, template, exec, nc,
		nil,
		logger,
		conductor.WithHost(host),
		conductor.WithHardwareTypes(mock.HardwareType),
	)
	if err != nil {
		logger.Error("failed to build conductor", "error", err)
		os.Exit(1)
	}

	logger.Info("conductord starting", "host", host, "nats_url", natsURL)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("conductor exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("conductord stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hostnameOrFallback() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "conductor-local"
	}
	return h
}

// seedInventory populates the in-memory store with a small set of nodes
// running the mock hardware type, so a freshly started process has
// something to deploy/clean/inspect against.
func seedInventory(store *memstore.Store) {
	for i := 0; i < 3; i++ {
		store.SeedNode(&model.Node{
			UUID:           uuid.New(),
			Name:           nodeName(i),
			Driver:         mock.HardwareType,
			ProvisionState: provision.Available,
			PowerState:     model.PowerOff,
		})
	}
}

func nodeName(i int) string {
	names := []string{"node-0", "node-1", "node-2"}
	if i < len(names) {
		return names[i]
	}
	return "node-n"
}
