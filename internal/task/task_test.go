// SPDX-License-Identifier: BSD-3-Clause

package task

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

type fakeNodeStore struct {
	mu         sync.Mutex
	nodes      map[string]*model.Node
	reserved   map[uuid.UUID]string
	reserveErr error
}

func newFakeNodeStore(nodes ...*model.Node) *fakeNodeStore {
	s := &fakeNodeStore{nodes: make(map[string]*model.Node), reserved: make(map[uuid.UUID]string)}
	for _, n := range nodes {
		s.nodes[n.UUID.String()] = n
	}
	return s
}

func (s *fakeNodeStore) GetNodeByIdentity(_ context.Context, identity string) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[identity]
	if !ok {
		return nil, coreerrors.ErrNodeNotFound
	}
	copied := *n
	copied.Reservation = s.reserved[n.UUID]
	return &copied, nil
}

func (s *fakeNodeStore) ListNodeInfo(context.Context, model.NodeFilter, model.NodeSort) ([]*model.Node, error) {
	return nil, nil
}

func (s *fakeNodeStore) AtomicReserve(_ context.Context, nodeUUID uuid.UUID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return s.reserveErr
	}
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

	n, ok := s.nodes[nodeUUID.String()]
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
		case "driver_internal_info":
			updated.DriverInternalInfo, _ = v.(map[string]any)
		}
	}
	updated.Version++
	s.nodes[nodeUUID.String()] = &updated
	copied := updated
	copied.Reservation = s.reserved[nodeUUID]
	return &copied, nil
}

type fakePool struct {
	mu       sync.Mutex
	saturate bool
	ran      []func(context.Context)
}

func (p *fakePool) Submit(fn func(ctx context.Context)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saturate {
		return assert.AnError
	}
	fn(context.Background())
	p.ran = append(p.ran, fn)
	return nil
}

type fakePowerIface struct{}

func (fakePowerIface) GetProperties() map[string]string      { return nil }
func (fakePowerIface) Validate(driver.TaskContext) error     { return nil }
func (fakePowerIface) GetPowerState(driver.TaskContext) (string, error) {
	return model.PowerOn, nil
}
func (fakePowerIface) SetPowerState(driver.TaskContext, string) error { return nil }
func (fakePowerIface) Reboot(driver.TaskContext) error                { return nil }

func newTestManager(t *testing.T, node *model.Node, pool WorkerPool) (*Manager, *fakeNodeStore) {
	t.Helper()
	store := newFakeNodeStore(node)

	registry := driver.NewRegistry()
	require.NoError(t, registry.Register(node.Driver, &driver.Bundle{Power: fakePowerIface{}}))

	template, err := provision.NewMachine(slog.Default())
	require.NoError(t, err)

	mgr := NewManager(store, nil, nil, registry, template, pool, slog.Default(), WithHost("conductor-a"))
	return mgr, store
}

func TestAcquireExclusiveSetsReservation(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, store := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{Purpose: "test"})
	require.NoError(t, err)
	defer tk.Release()

	assert.Equal(t, "conductor-a", store.reserved[node.UUID])
	assert.False(t, tk.Shared())
	assert.Equal(t, provision.Available, tk.Machine().CurrentState())
}

func TestAcquireSharedDoesNotReserve(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, store := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	assert.True(t, tk.Shared())
	assert.Empty(t, store.reserved[node.UUID])
}

func TestAcquireAlreadyLockedFailsAfterRetries(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, store := newTestManager(t, node, &fakePool{})
	store.reserved[node.UUID] = "conductor-b"

	_, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	assert.ErrorIs(t, err, coreerrors.ErrNodeLocked)
}

func TestReleaseClearsOnlyOwnReservation(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, store := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)
	tk.Release()
	assert.Empty(t, store.reserved[node.UUID])

	tk.Release() // idempotent
}

func TestUpgradeLockPromotesSharedTask(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, store := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, tk.UpgradeLock(context.Background()))
	assert.False(t, tk.Shared())
	assert.Equal(t, "conductor-a", store.reserved[node.UUID])
}

func TestSpawnAfterTransfersReleaseOwnership(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	pool := &fakePool{}
	mgr, store := newTestManager(t, node, pool)

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)

	var ran bool
	require.NoError(t, tk.SpawnAfter(func(context.Context) error {
		ran = true
		return nil
	}))

	tk.Release() // no-op: the continuation owns release now
	assert.True(t, ran)
	assert.Empty(t, store.reserved[node.UUID])
}

func TestSpawnAfterSaturatedPoolReturnsError(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	pool := &fakePool{saturate: true}
	mgr, store := newTestManager(t, node, pool)

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)
	defer tk.Release()

	err = tk.SpawnAfter(func(context.Context) error { return nil })
	assert.ErrorIs(t, err, coreerrors.ErrNoFreeConductorWorker)
	assert.Equal(t, "conductor-a", store.reserved[node.UUID])
}

func TestProcessEventAppliesTransition(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, _ := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, ProcessEventOptions{}))
	assert.Equal(t, provision.Deploying, tk.Machine().CurrentState())
	assert.Equal(t, tk.Machine().TargetState(), tk.Node().TargetProvisionState)
	assert.Equal(t, provision.Active, tk.Node().TargetProvisionState)
}

func TestUpdateNodeAppliesDiffUnderCAS(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	mgr, _ := newTestManager(t, node, &fakePool{})

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, tk.UpdateNode(context.Background(), model.NodeDiff{"last_error": "boom", "maintenance": true}))
	assert.Equal(t, "boom", tk.Node().LastError)
	assert.True(t, tk.Node().Maintenance)
}

func TestProcessEventRevertsOnSpawnFailure(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	pool := &fakePool{saturate: true}
	mgr, _ := newTestManager(t, node, pool)

	tk, err := mgr.Acquire(context.Background(), node.UUID.String(), AcquireOptions{})
	require.NoError(t, err)
	defer tk.Release()

	var handledErr error
	err = tk.ProcessEvent(context.Background(), provision.EventDeploy, ProcessEventOptions{
		Callback:     func(context.Context) error { return nil },
		ErrorHandler: func(_ context.Context, e error) { handledErr = e },
	})
	require.Error(t, err)
	assert.ErrorIs(t, handledErr, coreerrors.ErrNoFreeConductorWorker)
	assert.Equal(t, provision.Available, tk.Machine().CurrentState())
}
