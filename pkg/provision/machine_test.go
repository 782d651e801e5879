// SPDX-License-Identifier: BSD-3-Clause

package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachineBuildsWithoutError(t *testing.T) {
	_, err := NewMachine(nil)
	require.NoError(t, err)
}

func TestEnrollToManageableViaVerifying(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Enroll)
	require.NoError(t, err)

	require.NoError(t, node.ProcessEvent(context.Background(), EventManage))
	assert.Equal(t, Verifying, node.CurrentState())
	assert.Equal(t, Manageable, node.TargetState())

	require.NoError(t, node.ProcessEvent(context.Background(), EventDone))
	assert.Equal(t, Manageable, node.CurrentState())
	assert.Empty(t, node.TargetState())
}

func TestVerifyingFailureReturnsToEnroll(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Enroll)
	require.NoError(t, err)
	require.NoError(t, node.ProcessEvent(context.Background(), EventManage))
	require.NoError(t, node.ProcessEvent(context.Background(), EventFail))
	assert.Equal(t, Enroll, node.CurrentState())
}

func TestFullDeployCycle(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Available)
	require.NoError(t, err)

	require.NoError(t, node.ProcessEvent(context.Background(), EventDeploy))
	assert.Equal(t, Deploying, node.CurrentState())
	assert.Equal(t, Active, node.TargetState())

	require.NoError(t, node.ProcessEvent(context.Background(), EventDone))
	assert.Equal(t, Active, node.CurrentState())
	assert.Empty(t, node.TargetState())
}

func TestDeployFailureAndRebuild(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Available)
	require.NoError(t, err)

	require.NoError(t, node.ProcessEvent(context.Background(), EventDeploy))
	require.NoError(t, node.ProcessEvent(context.Background(), EventFail))
	assert.Equal(t, DeployFail, node.CurrentState())

	require.NoError(t, node.ProcessEvent(context.Background(), EventRebuild))
	assert.Equal(t, Deploying, node.CurrentState())
}

func TestCleanAndRescueCycles(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Manageable)
	require.NoError(t, err)
	require.NoError(t, node.ProcessEvent(context.Background(), EventClean))
	assert.Equal(t, Cleaning, node.CurrentState())
	require.NoError(t, node.ProcessEvent(context.Background(), EventDone))
	assert.Equal(t, Available, node.CurrentState())

	active, err := NewNodeMachine(template, Active)
	require.NoError(t, err)
	require.NoError(t, active.ProcessEvent(context.Background(), EventRescue))
	assert.Equal(t, Rescuing, active.CurrentState())
	require.NoError(t, active.ProcessEvent(context.Background(), EventDone))
	assert.Equal(t, Rescue, active.CurrentState())
}

func TestInvalidTransitionRejected(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	node, err := NewNodeMachine(template, Available)
	require.NoError(t, err)

	err = node.ProcessEvent(context.Background(), EventDone)
	assert.Error(t, err)
	assert.Equal(t, Available, node.CurrentState())
}

func TestCopiesAreIndependent(t *testing.T) {
	template, err := NewMachine(nil)
	require.NoError(t, err)

	nodeA, err := NewNodeMachine(template, Available)
	require.NoError(t, err)
	nodeB, err := NewNodeMachine(template, Available)
	require.NoError(t, err)

	require.NoError(t, nodeA.ProcessEvent(context.Background(), EventDeploy))
	assert.Equal(t, Deploying, nodeA.CurrentState())
	assert.Equal(t, Available, nodeB.CurrentState())
}
