// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"fmt"

	"github.com/metalforge/conductor/pkg/coreerrors"
)

// maintenanceBlockedEvents are the workflow-entry events maintenance mode
// refuses, per invariant 5: maintenance never blocks delete.
var maintenanceBlockedEvents = map[string]bool{
	"deploy":  true,
	"clean":   true,
	"inspect": true,
}

// CheckMaintenanceAllows returns coreerrors.ErrNodeInMaintenance if the node
// is in maintenance and event is one of the workflow-entry events
// maintenance blocks.
func CheckMaintenanceAllows(n *Node, event string) error {
	if n.Maintenance && maintenanceBlockedEvents[event] {
		return fmt.Errorf("%w: node %s is in maintenance, event %q is blocked", coreerrors.ErrNodeInMaintenance, n.UUID, event)
	}
	return nil
}

// CheckStepIndex validates invariant 4: the step cursor is either absent
// (represented by index < 0) or a valid index into steps.
func CheckStepIndex(steps []Step, index int) error {
	if index < 0 {
		return nil
	}
	if index >= len(steps) {
		return fmt.Errorf("%w: step index %d out of range for %d steps", coreerrors.ErrInvalidParameterValue, index, len(steps))
	}
	return nil
}

// workflowStableTargets maps each workflow name to the stable state its
// target_provision_state must hold while the workflow is in progress, per
// invariant 3.
var workflowStableTargets = map[string]string{
	"deploy":  "active",
	"clean":   "available",
	"service": "active",
	"rescue":  "rescue",
	"inspect": "manageable",
	"adopt":   "active",
}

// CheckTargetConsistency validates invariant 3 for the given in-progress
// workflow: target must equal the workflow's expected stable state.
func CheckTargetConsistency(workflow, target string) error {
	want, ok := workflowStableTargets[workflow]
	if !ok {
		return nil
	}
	if target != want {
		return fmt.Errorf("%w: workflow %q requires target_provision_state %q, got %q",
			coreerrors.ErrInvalidParameterValue, workflow, want, target)
	}
	return nil
}

// portMutationBlockedStates are the node provision states in which a port's MAC
// address may not be changed unless the node is in maintenance.
var portMutationBlockedStates = map[string]bool{
	"active":   true,
	"deleting": true,
}

// CheckPortAddressMutable validates the MAC-change rule: changes are
// allowed only when the node is not ACTIVE/DELETING and carries no
// instance_uuid, unless the node is in maintenance.
func CheckPortAddressMutable(n *Node) error {
	if n.Maintenance {
		return nil
	}
	if portMutationBlockedStates[n.ProvisionState] || n.HasInstance() {
		return fmt.Errorf("%w: MAC address cannot be changed while node %s is %s with an associated instance",
			coreerrors.ErrInvalidParameterValue, n.UUID, n.ProvisionState)
	}
	return nil
}

// CheckPXEFlagMutable validates that a port's pxe_enabled flag may only
// change while the node is MANAGEABLE or in maintenance.
func CheckPXEFlagMutable(n *Node) error {
	if n.Maintenance || n.ProvisionState == "manageable" {
		return nil
	}
	return fmt.Errorf("%w: pxe_enabled can only change while node %s is manageable or in maintenance",
		coreerrors.ErrInvalidParameterValue, n.UUID)
}

// CheckPortgroupEmptyForReparent enforces that a portgroup must be emptied
// of ports before it can be reparented to a different node.
func CheckPortgroupEmptyForReparent(pg *Portgroup, ports []*Port) error {
	if len(ports) > 0 {
		return fmt.Errorf("%w: portgroup %s still has %d port(s)", coreerrors.ErrPortgroupNotEmpty, pg.UUID, len(ports))
	}
	return nil
}
