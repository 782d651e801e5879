// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"context"
	"testing"

	"github.com/metalforge/conductor/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	ctx  context.Context
	node *model.Node
}

func (f *fakeTask) Context() context.Context { return f.ctx }
func (f *fakeTask) Node() *model.Node        { return f.node }

type fakePower struct{}

func (fakePower) GetProperties() map[string]string { return nil }
func (fakePower) Validate(TaskContext) error        { return nil }
func (fakePower) GetPowerState(TaskContext) (string, error) { return model.PowerOn, nil }
func (fakePower) SetPowerState(TaskContext, string) error   { return nil }
func (fakePower) Reboot(TaskContext) error                  { return nil }

type fakeDeploy struct{}

func (fakeDeploy) GetProperties() map[string]string { return nil }
func (fakeDeploy) Validate(TaskContext) error        { return nil }
func (fakeDeploy) Prepare(TaskContext) error         { return nil }
func (fakeDeploy) PrepareCleaning(TaskContext) (any, error) { return nil, nil }
func (fakeDeploy) TearDownCleaning(TaskContext) error       { return nil }
func (fakeDeploy) TearDownDeploying(TaskContext) error      { return nil }
func (fakeDeploy) TearDownServicing(TaskContext) error      { return nil }
func (fakeDeploy) TakeOver(TaskContext) error               { return nil }
func (fakeDeploy) ExecuteDeployStep(TaskContext, model.Step) (any, error)  { return nil, nil }
func (fakeDeploy) ExecuteCleanStep(TaskContext, model.Step) (any, error)   { return nil, nil }
func (fakeDeploy) ExecuteServiceStep(TaskContext, model.Step) (any, error) { return nil, nil }

func (fakeDeploy) DeploySteps() []StepDescriptor {
	return []StepDescriptor{
		{Interface: "deploy", Step: "deploy.write_image", Priority: 80},
		{Interface: "deploy", Step: "deploy.switch_pxe_config", Priority: 10},
	}
}
func (fakeDeploy) CleanSteps() []StepDescriptor {
	return []StepDescriptor{{Interface: "deploy", Step: "erase_disks", Priority: 20, Abortable: true}}
}
func (fakeDeploy) ServiceSteps() []StepDescriptor { return nil }

type fakeVendor struct{}

func (fakeVendor) GetProperties() map[string]string { return nil }
func (fakeVendor) Validate(TaskContext) error        { return nil }
func (fakeVendor) Routes() map[string]VendorRoute {
	return map[string]VendorRoute{
		"ping": {
			HTTPMethods: []string{"POST"},
			Func: func(t TaskContext, args map[string]any) (any, error) {
				return "pong", nil
			},
		},
	}
}

func fakeBundle() *Bundle {
	return &Bundle{Power: fakePower{}, Deploy: fakeDeploy{}, Vendor: fakeVendor{}}
}

func TestRegisterAndLoad(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("fake-ipmi", fakeBundle()))

	b, err := r.LoadDriver("fake-ipmi")
	require.NoError(t, err)
	assert.Equal(t, "fake-ipmi", b.Name)

	_, err = r.LoadDriver("missing")
	assert.ErrorIs(t, err, ErrDriverNotRegistered)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("fake-ipmi", fakeBundle()))
	err := r.Register("fake-ipmi", fakeBundle())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestDeployStepsSortedByPriorityDescending(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("fake-ipmi", fakeBundle()))

	steps, err := r.DeploySteps("fake-ipmi")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "deploy.write_image", steps[0].Step)
	assert.Equal(t, "deploy.switch_pxe_config", steps[1].Step)
}

func TestCleanStepsEnumerated(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("fake-ipmi", fakeBundle()))

	steps, err := r.CleanSteps("fake-ipmi")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.True(t, steps[0].Abortable)
}

func TestBundleRequireMissingInterface(t *testing.T) {
	b := &Bundle{Name: "bare"}
	_, err := b.RequirePower()
	assert.ErrorIs(t, err, ErrUnsupportedInterface)
}

func TestDispatchVendorPassthru(t *testing.T) {
	b := fakeBundle()
	task := &fakeTask{ctx: context.Background(), node: &model.Node{}}

	result, err := DispatchVendorPassthru(b.Vendor, task, "ping", "POST", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", result)

	_, err = DispatchVendorPassthru(b.Vendor, task, "ping", "DELETE", nil)
	assert.ErrorIs(t, err, ErrMethodNotAllowed)

	_, err = DispatchVendorPassthru(b.Vendor, task, "missing", "POST", nil)
	assert.ErrorIs(t, err, ErrRouteNotFound)
}
