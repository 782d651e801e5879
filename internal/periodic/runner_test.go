// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/hashring"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

type fakeNodeStore struct {
	mu       sync.Mutex
	nodes    map[string]*model.Node
	reserved map[uuid.UUID]string
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

func (s *fakeNodeStore) ListNodeInfo(_ context.Context, filter model.NodeFilter, _ model.NodeSort) ([]*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Node
	for _, n := range s.nodes {
		copied := *n
		copied.Reservation = s.reserved[n.UUID]

		if filter.ProvisionState != "" && copied.ProvisionState != filter.ProvisionState {
			continue
		}
		if filter.Maintenance != nil && copied.Maintenance != *filter.Maintenance {
			continue
		}
		if filter.Reserved != nil && (copied.Reservation != "") != *filter.Reserved {
			continue
		}
		if !filter.ProvisionedBefore.IsZero() && !copied.ProvisionUpdatedAt.Before(filter.ProvisionedBefore) {
			continue
		}
		nc := copied
		out = append(out, &nc)
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
		case "driver_internal_info":
			updated.DriverInternalInfo, _ = v.(map[string]any)
		case "power_state":
			updated.PowerState, _ = v.(string)
		case "conductor_affinity":
			updated.ConductorAffinity, _ = v.(string)
		}
	}
	updated.Version++
	s.nodes[nodeUUID.String()] = &updated
	copied := updated
	copied.Reservation = s.reserved[nodeUUID]
	return &copied, nil
}

type fakeConductorStore struct {
	offline []*model.Conductor
}

func (s *fakeConductorStore) RegisterConductor(context.Context, string, []string) (*model.Conductor, error) {
	return nil, nil
}
func (s *fakeConductorStore) Heartbeat(context.Context, string) error { return nil }
func (s *fakeConductorStore) ListConductors(context.Context) ([]*model.Conductor, error) {
	return nil, nil
}
func (s *fakeConductorStore) ListOfflineConductors(context.Context, time.Duration) ([]*model.Conductor, error) {
	return s.offline, nil
}

type fakePool struct{}

func (fakePool) Submit(fn func(ctx context.Context)) error {
	fn(context.Background())
	return nil
}

type fakePowerIface struct {
	reported string
	setErr   error
	setCalls []string
}

func (*fakePowerIface) GetProperties() map[string]string { return nil }
func (*fakePowerIface) Validate(driver.TaskContext) error { return nil }
func (f *fakePowerIface) GetPowerState(driver.TaskContext) (string, error) {
	return f.reported, nil
}
func (f *fakePowerIface) SetPowerState(_ driver.TaskContext, state string) error {
	f.setCalls = append(f.setCalls, state)
	return f.setErr
}
func (*fakePowerIface) Reboot(driver.TaskContext) error { return nil }

type fakeManagementIface struct {
	reading map[string]any
}

func (*fakeManagementIface) GetProperties() map[string]string { return nil }
func (*fakeManagementIface) Validate(driver.TaskContext) error { return nil }
func (*fakeManagementIface) GetSupportedBootDevices(driver.TaskContext) ([]string, error) {
	return nil, nil
}
func (*fakeManagementIface) SetBootDevice(driver.TaskContext, string, bool) error { return nil }
func (*fakeManagementIface) GetBootDevice(driver.TaskContext) (string, bool, error) {
	return "", false, nil
}
func (f *fakeManagementIface) GetSensorsData(driver.TaskContext) (map[string]any, error) {
	return f.reading, nil
}

type fakeDeployIface struct {
	prepared  bool
	tookOver  bool
}

func (*fakeDeployIface) GetProperties() map[string]string { return nil }
func (*fakeDeployIface) Validate(driver.TaskContext) error { return nil }
func (f *fakeDeployIface) Prepare(driver.TaskContext) error { f.prepared = true; return nil }
func (*fakeDeployIface) PrepareCleaning(driver.TaskContext) (any, error) { return nil, nil }
func (*fakeDeployIface) TearDownCleaning(driver.TaskContext) error       { return nil }
func (*fakeDeployIface) TearDownDeploying(driver.TaskContext) error      { return nil }
func (*fakeDeployIface) TearDownServicing(driver.TaskContext) error      { return nil }
func (f *fakeDeployIface) TakeOver(driver.TaskContext) error             { f.tookOver = true; return nil }
func (*fakeDeployIface) ExecuteDeployStep(driver.TaskContext, model.Step) (any, error) {
	return nil, nil
}
func (*fakeDeployIface) ExecuteCleanStep(driver.TaskContext, model.Step) (any, error) {
	return nil, nil
}
func (*fakeDeployIface) ExecuteServiceStep(driver.TaskContext, model.Step) (any, error) {
	return nil, nil
}

type fakePublisher struct {
	published map[string]map[string]any
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[string]map[string]any)}
}

func (p *fakePublisher) PublishSensorData(_ context.Context, nodeUUID string, reading map[string]any) error {
	p.published[nodeUUID] = reading
	return nil
}

func newTestRunner(t *testing.T, node *model.Node, bundle *driver.Bundle, conductors model.ConductorStore, publisher Publisher, opts ...Option) (*Runner, *fakeNodeStore) {
	t.Helper()
	store := newFakeNodeStore(node)

	registry := driver.NewRegistry()
	require.NoError(t, registry.Register(node.Driver, bundle))

	template, err := provision.NewMachine(slog.Default())
	require.NoError(t, err)

	mgr := task.NewManager(store, nil, nil, registry, template, fakePool{}, slog.Default(), task.WithHost("conductor-a"))

	ring := hashring.New()
	ring.Rebuild([]string{"conductor-a"})

	runner := NewRunner("conductor-a", store, conductors, ring, mgr, publisher, slog.Default(), opts...)
	return runner, store
}

func TestPowerSyncReissuesDesiredAction(t *testing.T) {
	power := &fakePowerIface{reported: model.PowerOff}
	node := &model.Node{
		UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available,
		PowerState: model.PowerOn, TargetPowerState: model.PowerOn,
	}
	runner, _ := newTestRunner(t, node, &driver.Bundle{Power: power}, nil, nil)

	tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, runner.syncPowerState(context.Background(), tk))
	assert.Equal(t, []string{model.PowerOn}, power.setCalls)
}

func TestPowerSyncMaintenanceAfterMaxRetries(t *testing.T) {
	power := &fakePowerIface{reported: model.PowerOff, setErr: assert.AnError}
	node := &model.Node{
		UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available,
		PowerState: model.PowerOn, TargetPowerState: model.PowerOn,
	}
	runner, store := newTestRunner(t, node, &driver.Bundle{Power: power}, nil, nil,
		WithPowerStateSyncMaxRetries(2))

	for i := 0; i < 2; i++ {
		tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
		require.NoError(t, err)
		require.NoError(t, runner.syncPowerState(context.Background(), tk))
		tk.Release()
	}

	assert.True(t, store.nodes[node.UUID.String()].Maintenance)
}

func TestDeployTimeoutSweepFailsAndClearsSteps(t *testing.T) {
	node := &model.Node{
		UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.DeployWait,
		ProvisionUpdatedAt: time.Now().Add(-2 * time.Hour),
		DriverInternalInfo: map[string]any{
			model.StepsKey("deploy"):      []model.Step{{Interface: "deploy", Step: "write_image"}},
			model.StepIndexKey("deploy"):  0,
		},
	}
	runner, store := newTestRunner(t, node, &driver.Bundle{Power: &fakePowerIface{}}, nil, nil)

	tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	sweep := runner.deployTimeoutSweep()
	require.NoError(t, runner.failOnTimeout(context.Background(), tk, sweep))

	updated := store.nodes[node.UUID.String()]
	assert.Equal(t, provision.DeployFail, updated.ProvisionState)
	assert.NotContains(t, updated.DriverInternalInfo, model.StepsKey("deploy"))
}

func TestOrphanRecoveryFailsNodeHeldByDeadConductor(t *testing.T) {
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Deploying}
	conductors := &fakeConductorStore{offline: []*model.Conductor{{Hostname: "conductor-dead"}}}
	runner, store := newTestRunner(t, node, &driver.Bundle{Power: &fakePowerIface{}}, conductors, nil)

	require.NoError(t, store.AtomicReserve(context.Background(), node.UUID, "conductor-dead"))

	tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, runner.recoverIfOrphaned(context.Background(), tk))

	assert.Empty(t, store.reserved[node.UUID])
	assert.Equal(t, provision.DeployFail, store.nodes[node.UUID.String()].ProvisionState)
}

func TestTakeoverRunsPrepareAndTakeOver(t *testing.T) {
	deploy := &fakeDeployIface{}
	node := &model.Node{
		UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Active,
		ConductorAffinity: "conductor-old",
	}
	conductors := &fakeConductorStore{}
	runner, store := newTestRunner(t, node, &driver.Bundle{Power: &fakePowerIface{}, Deploy: deploy}, conductors, nil)

	tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, runner.takeoverIfRebalanced(context.Background(), tk))

	assert.True(t, deploy.prepared)
	assert.True(t, deploy.tookOver)
	assert.Equal(t, "conductor-a", store.nodes[node.UUID.String()].ConductorAffinity)
}

func TestSensorShipperFiltersTypes(t *testing.T) {
	mgmt := &fakeManagementIface{reading: map[string]any{"temperature": 42, "fan_speed": 9001}}
	node := &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
	publisher := newFakePublisher()
	runner, _ := newTestRunner(t, node, &driver.Bundle{Power: &fakePowerIface{}, Management: mgmt}, nil, publisher,
		WithSensorShipper("temperature"))

	tk, err := runner.mgr.Acquire(context.Background(), node.UUID.String(), task.AcquireOptions{Shared: true})
	require.NoError(t, err)
	defer tk.Release()

	require.NoError(t, runner.shipSensorData(context.Background(), tk))

	got := publisher.published[node.UUID.String()]
	assert.Equal(t, map[string]any{"temperature": 42}, got)
}
