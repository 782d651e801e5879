// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalforge/conductor/internal/executor"
	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/hashring"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// fakeNodeStore is the same compare-and-swap fake the task package tests
// use, reimplemented here so this package's tests don't depend on an
// unexported type from another package.
type fakeNodeStore struct {
	mu       sync.Mutex
	nodes    map[uuid.UUID]*model.Node
	reserved map[uuid.UUID]string
}

func newFakeNodeStore(nodes ...*model.Node) *fakeNodeStore {
	s := &fakeNodeStore{nodes: make(map[uuid.UUID]*model.Node), reserved: make(map[uuid.UUID]string)}
	for _, n := range nodes {
		s.nodes[n.UUID] = n
	}
	return s
}

func (s *fakeNodeStore) GetNodeByIdentity(_ context.Context, identity string) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := uuid.Parse(identity)
	if err != nil {
		return nil, coreerrors.ErrNodeNotFound
	}
	n, ok := s.nodes[id]
	if !ok {
		return nil, coreerrors.ErrNodeNotFound
	}
	cp := *n
	cp.Reservation = s.reserved[id]
	return &cp, nil
}

func (s *fakeNodeStore) ListNodeInfo(_ context.Context, filter model.NodeFilter, _ model.NodeSort) ([]*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Node
	for id, n := range s.nodes {
		reservation := s.reserved[id]
		if filter.Reserved != nil && (reservation != "") != *filter.Reserved {
			continue
		}
		cp := *n
		cp.Reservation = reservation
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeNodeStore) AtomicReserve(_ context.Context, nodeUUID uuid.UUID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.reserved[nodeUUID]; ok && existing != "" {
		return coreerrors.ErrNodeLocked
	}
	s.reserved[nodeUUID] = host
	return nil
}

func (s *fakeNodeStore) AtomicRelease(_ context.Context, nodeUUID uuid.UUID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserved[nodeUUID] == host {
		delete(s.reserved, nodeUUID)
	}
	return nil
}

func (s *fakeNodeStore) UpdateNode(_ context.Context, nodeUUID uuid.UUID, expectedVersion int64, diff model.NodeDiff) (*model.Node, error) {
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
		case "last_error":
			updated.LastError, _ = v.(string)
		case "maintenance":
			updated.Maintenance, _ = v.(bool)
		case "provision_state":
			updated.ProvisionState, _ = v.(string)
		case "target_provision_state":
			updated.TargetProvisionState, _ = v.(string)
		case "power_state":
			updated.PowerState, _ = v.(string)
		case "target_power_state":
			updated.TargetPowerState, _ = v.(string)
		case "driver_internal_info":
			updated.DriverInternalInfo, _ = v.(map[string]any)
		}
	}
	updated.Version++
	s.nodes[nodeUUID] = &updated
	cp := updated
	cp.Reservation = s.reserved[nodeUUID]
	return &cp, nil
}

// fakeConductorStore is an in-memory model.ConductorStore fake.
type fakeConductorStore struct {
	mu         sync.Mutex
	conductors map[string]*model.Conductor
}

func newFakeConductorStore(conductors ...*model.Conductor) *fakeConductorStore {
	s := &fakeConductorStore{conductors: make(map[string]*model.Conductor)}
	for _, c := range conductors {
		s.conductors[c.Hostname] = c
	}
	return s
}

func (s *fakeConductorStore) RegisterConductor(_ context.Context, hostname string, hardwareTypes []string) (*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conductors[hostname]
	if !ok {
		c = &model.Conductor{Hostname: hostname}
		s.conductors[hostname] = c
	}
	c.HardwareTypes = hardwareTypes
	c.UpdatedAt = time.Now()
	return c, nil
}

func (s *fakeConductorStore) Heartbeat(_ context.Context, hostname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conductors[hostname]; ok {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (s *fakeConductorStore) ListConductors(_ context.Context) ([]*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conductor, 0, len(s.conductors))
	for _, c := range s.conductors {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeConductorStore) ListOfflineConductors(_ context.Context, threshold time.Duration) ([]*model.Conductor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var out []*model.Conductor
	for _, c := range s.conductors {
		if c.Offline(now, threshold) {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakePower is the minimal power interface a test driver bundle needs.
type fakePower struct {
	mu    sync.Mutex
	state string
}

func (p *fakePower) GetProperties() map[string]string { return nil }
func (p *fakePower) Validate(driver.TaskContext) error { return nil }
func (p *fakePower) GetPowerState(driver.TaskContext) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, nil
}
func (p *fakePower) SetPowerState(_ driver.TaskContext, state string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	return nil
}
func (p *fakePower) Reboot(driver.TaskContext) error { return nil }

func newTestConductor(t *testing.T, host string, nodes *fakeNodeStore, conductors *fakeConductorStore, nc *nats.Conn) *Conductor {
	t.Helper()

	registry := driver.NewRegistry()
	require.NoError(t, registry.Register("fake-ipmi", &driver.Bundle{Power: &fakePower{state: model.PowerOff}}))

	template, err := provision.NewMachine(slog.Default())
	require.NoError(t, err)

	exec := executor.New(nil, nil, slog.Default())

	c, err := New(nodes, nil, nil, conductors, registry, template, exec, nc, nil, slog.Default(),
		WithHost(host), WithHardwareTypes("fake-ipmi"), WithHeartbeatInterval(20*time.Millisecond))
	require.NoError(t, err)
	return c
}

func TestNodeIsLocalReflectsRingMembership(t *testing.T) {
	nodes := newFakeNodeStore()
	conductors := newFakeConductorStore()
	c := newTestConductor(t, "host-a", nodes, conductors, nil)

	c.ring.Rebuild([]string{"host-a", "host-b"})

	nodeUUID := uuid.New()
	owner, err := c.ring.Lookup(hashring.NodeKey(nodeUUID, "fake-ipmi"))
	require.NoError(t, err)

	local, err := c.NodeIsLocal(nodeUUID, "fake-ipmi")
	require.NoError(t, err)
	assert.Equal(t, owner == "host-a", local)
}

func TestRebuildRingExcludesOfflineConductors(t *testing.T) {
	nodes := newFakeNodeStore()
	conductors := newFakeConductorStore(
		&model.Conductor{Hostname: "host-a", UpdatedAt: time.Now()},
		&model.Conductor{Hostname: "host-stale", UpdatedAt: time.Now().Add(-time.Hour)},
	)
	c := newTestConductor(t, "host-a", nodes, conductors, nil)

	require.NoError(t, c.rebuildRing(context.Background()))

	members := c.ring.Members()
	assert.Contains(t, members, "host-a")
	assert.NotContains(t, members, "host-stale")
}

func TestClearStaleStateReleasesOnlyOwnReservations(t *testing.T) {
	ownNode := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Active, TargetPowerState: model.PowerOn}
	otherNode := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Active}

	nodes := newFakeNodeStore(ownNode, otherNode)
	nodes.reserved[ownNode.UUID] = "host-a"
	nodes.reserved[otherNode.UUID] = "host-b"

	conductors := newFakeConductorStore()
	c := newTestConductor(t, "host-a", nodes, conductors, nil)

	require.NoError(t, c.clearStaleState(context.Background()))

	assert.Empty(t, nodes.reserved[ownNode.UUID])
	assert.Equal(t, "host-b", nodes.reserved[otherNode.UUID])

	refreshed, err := nodes.GetNodeByIdentity(context.Background(), ownNode.UUID.String())
	require.NoError(t, err)
	assert.Empty(t, refreshed.TargetPowerState)
}

// startEmbeddedNATS boots an in-process NATS server for a hermetic RPC
// test and returns a client connection to it, cleaning both up at test end.
func startEmbeddedNATS(t *testing.T) *nats.Conn {
	t.Helper()

	ns, err := natsserver.NewServer(&natsserver.Options{Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(2*time.Second))
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestRunServesChangeNodePowerStateOverRPC(t *testing.T) {
	nc := startEmbeddedNATS(t)

	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available, PowerState: model.PowerOff}
	nodes := newFakeNodeStore(node)
	conductors := newFakeConductorStore()
	c := newTestConductor(t, "host-a", nodes, conductors, nc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := nc.Request("conductor.ChangeNodePowerState", []byte(`{}`), 200*time.Millisecond)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond, "conductor RPC surface never came up")

	body, err := json.Marshal(changeNodePowerStateRequest{NodeIdentity: node.UUID.String(), TargetState: model.PowerOn})
	require.NoError(t, err)

	msg, err := nc.Request("conductor.ChangeNodePowerState", body, time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(msg.Data), "a successful ChangeNodePowerState reply carries an empty struct")

	require.Eventually(t, func() bool {
		refreshed, err := nodes.GetNodeByIdentity(context.Background(), node.UUID.String())
		return err == nil && refreshed.PowerState == model.PowerOn
	}, time.Second, 10*time.Millisecond, "power state was never applied")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("conductor did not shut down after context cancellation")
	}
}

func TestForwardReturnsErrorWithoutRingEntry(t *testing.T) {
	nodes := newFakeNodeStore()
	conductors := newFakeConductorStore()
	c := newTestConductor(t, "host-a", nodes, conductors, nil)

	_, err := c.forward(context.Background(), uuid.New(), "fake-ipmi", "ChangeNodePowerState", []byte(`{}`))
	assert.ErrorIs(t, err, ErrForwardingUnavailable)
}
