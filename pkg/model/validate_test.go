// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"testing"

	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/stretchr/testify/assert"
)

func TestCheckMaintenanceAllows(t *testing.T) {
	n := &Node{Maintenance: true}
	assert.ErrorIs(t, CheckMaintenanceAllows(n, "deploy"), coreerrors.ErrNodeInMaintenance)
	assert.ErrorIs(t, CheckMaintenanceAllows(n, "clean"), coreerrors.ErrNodeInMaintenance)
	assert.ErrorIs(t, CheckMaintenanceAllows(n, "inspect"), coreerrors.ErrNodeInMaintenance)
	assert.NoError(t, CheckMaintenanceAllows(n, "delete"))

	n.Maintenance = false
	assert.NoError(t, CheckMaintenanceAllows(n, "deploy"))
}

func TestCheckStepIndex(t *testing.T) {
	steps := []Step{{Step: "a"}, {Step: "b"}}
	assert.NoError(t, CheckStepIndex(steps, -1))
	assert.NoError(t, CheckStepIndex(steps, 0))
	assert.NoError(t, CheckStepIndex(steps, 1))
	assert.Error(t, CheckStepIndex(steps, 2))
}

func TestCheckTargetConsistency(t *testing.T) {
	assert.NoError(t, CheckTargetConsistency("deploy", "active"))
	assert.Error(t, CheckTargetConsistency("deploy", "available"))
	assert.NoError(t, CheckTargetConsistency("unknown-workflow", "anything"))
}

func TestCheckPortAddressMutable(t *testing.T) {
	n := &Node{ProvisionState: "active"}
	assert.Error(t, CheckPortAddressMutable(n))

	n.Maintenance = true
	assert.NoError(t, CheckPortAddressMutable(n))

	n2 := &Node{ProvisionState: "manageable"}
	assert.NoError(t, CheckPortAddressMutable(n2))
}

func TestCheckPXEFlagMutable(t *testing.T) {
	n := &Node{ProvisionState: "active"}
	assert.Error(t, CheckPXEFlagMutable(n))

	n.ProvisionState = "manageable"
	assert.NoError(t, CheckPXEFlagMutable(n))

	n.ProvisionState = "active"
	n.Maintenance = true
	assert.NoError(t, CheckPXEFlagMutable(n))
}

func TestCheckPortgroupEmptyForReparent(t *testing.T) {
	pg := &Portgroup{}
	assert.NoError(t, CheckPortgroupEmptyForReparent(pg, nil))
	assert.Error(t, CheckPortgroupEmptyForReparent(pg, []*Port{{}}))
}
