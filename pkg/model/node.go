// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"time"

	"github.com/google/uuid"
)

// Power states. NOSTATE means the power state is unknown.
const (
	PowerOn      = "power on"
	PowerOff     = "power off"
	PowerNoState = ""
	PowerReboot  = "rebooting"
)

// Step is one entry in a deploy/clean/service step list: an ordered unit of
// work executed on a named driver interface.
type Step struct {
	Interface        string         `json:"interface"`
	Step             string         `json:"step"`
	Priority         int            `json:"priority"`
	ArgsInfo         map[string]any `json:"args_info,omitempty"`
	Abortable        bool           `json:"abortable"`
	AbortAfter       bool           `json:"abort_after,omitempty"`
	DeploymentReboot bool           `json:"deployment_reboot,omitempty"`
}

// Node is the central entity: a physical machine under management.
type Node struct {
	UUID         uuid.UUID `json:"uuid"`
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	InstanceUUID uuid.UUID `json:"instance_uuid,omitempty"`

	Driver             string         `json:"driver"`
	DriverInfo         map[string]any `json:"driver_info,omitempty"`
	DriverInternalInfo map[string]any `json:"driver_internal_info,omitempty"`
	InstanceInfo       map[string]any `json:"instance_info,omitempty"`

	ProvisionState       string `json:"provision_state"`
	TargetProvisionState string `json:"target_provision_state,omitempty"`
	LastError            string `json:"last_error,omitempty"`
	Maintenance          bool   `json:"maintenance"`
	MaintenanceReason    string `json:"maintenance_reason,omitempty"`

	PowerState       string `json:"power_state"`
	TargetPowerState string `json:"target_power_state,omitempty"`

	Reservation        string `json:"reservation,omitempty"`
	ConductorAffinity  string `json:"conductor_affinity,omitempty"`

	DeployStep  *Step `json:"deploy_step,omitempty"`
	CleanStep   *Step `json:"clean_step,omitempty"`
	ServiceStep *Step `json:"service_step,omitempty"`

	ProvisionUpdatedAt  time.Time `json:"provision_updated_at,omitzero"`
	InspectionStartedAt time.Time `json:"inspection_started_at,omitzero"`

	// Version is a monotonically increasing counter used as the
	// compare-and-swap token for UpdateNode.
	Version int64 `json:"version"`
}

// HasInstance reports whether the node is associated with a workload.
func (n *Node) HasInstance() bool {
	return n.InstanceUUID != uuid.Nil
}

// StepsKey returns the driver_internal_info key holding the ordered step
// list for the given workflow ("deploy", "clean", "service").
func StepsKey(workflow string) string { return workflow + "_steps" }

// StepIndexKey returns the driver_internal_info key holding the cursor into
// the step list for the given workflow.
func StepIndexKey(workflow string) string { return workflow + "_step_index" }

// SkipCurrentStepKey returns the driver_internal_info key holding the
// skip-current-step flag consulted by a resume operation.
func SkipCurrentStepKey(workflow string) string { return "skip_current_" + workflow + "_step" }
