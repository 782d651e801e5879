// SPDX-License-Identifier: BSD-3-Clause

package executor

import "github.com/metalforge/conductor/pkg/provision"

// Workflow names. These are also the prefix used by model.StepsKey and
// friends ("deploy_steps", "clean_step_index", ...).
const (
	WorkflowDeploy  = "deploy"
	WorkflowClean   = "clean"
	WorkflowService = "service"
)

// workflowMeta ties a step-sequence workflow to its provisioning FSM's
// in-progress, wait, and fail states and the events that drive it.
type workflowMeta struct {
	waitState string
	failState string
	stepField string
}

var workflows = map[string]workflowMeta{
	WorkflowDeploy:  {waitState: provision.DeployWait, failState: provision.DeployFail, stepField: "deploy_step"},
	WorkflowClean:   {waitState: provision.CleanWait, failState: provision.CleanFail, stepField: "clean_step"},
	WorkflowService: {waitState: provision.ServiceWait, failState: provision.ServiceFail, stepField: "service_step"},
}

func lookupWorkflow(name string) (workflowMeta, error) {
	meta, ok := workflows[name]
	if !ok {
		return workflowMeta{}, ErrUnknownWorkflow
	}
	return meta, nil
}
