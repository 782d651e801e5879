// SPDX-License-Identifier: BSD-3-Clause

package executor

import (
	"context"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/model"
)

// mergeDriverInternalInfo returns node's driver_internal_info with kv
// applied; a nil value in kv deletes that key rather than storing nil.
func mergeDriverInternalInfo(node *model.Node, kv map[string]any) map[string]any {
	merged := make(map[string]any, len(node.DriverInternalInfo)+len(kv))
	for k, v := range node.DriverInternalInfo {
		merged[k] = v
	}
	for k, v := range kv {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// persistSteps writes the full step list and starting index for workflow,
// and sets the workflow's current-step field to steps[index].
func persistSteps(ctx context.Context, tk *task.Task, workflow string, steps []model.Step, index int) error {
	meta, err := lookupWorkflow(workflow)
	if err != nil {
		return err
	}
	node := tk.Node()
	var current *model.Step
	if index < len(steps) {
		current = &steps[index]
	}
	return tk.UpdateNode(ctx, model.NodeDiff{
		"driver_internal_info": mergeDriverInternalInfo(node, map[string]any{
			model.StepsKey(workflow):      steps,
			model.StepIndexKey(workflow):  index,
			model.SkipCurrentStepKey(workflow): true,
		}),
		meta.stepField: current,
	})
}

// setCurrentStep advances the persisted index and current-step field
// without rewriting the full step list.
func setCurrentStep(ctx context.Context, tk *task.Task, workflow string, step model.Step, index int) error {
	meta, err := lookupWorkflow(workflow)
	if err != nil {
		return err
	}
	node := tk.Node()
	return tk.UpdateNode(ctx, model.NodeDiff{
		"driver_internal_info": mergeDriverInternalInfo(node, map[string]any{
			model.StepIndexKey(workflow): index,
		}),
		meta.stepField: &step,
	})
}

// clearSteps removes the workflow's step bookkeeping entirely, called on
// successful completion and on timeout.
func clearSteps(ctx context.Context, tk *task.Task, workflow string) error {
	meta, err := lookupWorkflow(workflow)
	if err != nil {
		return err
	}
	node := tk.Node()
	return tk.UpdateNode(ctx, model.NodeDiff{
		"driver_internal_info": mergeDriverInternalInfo(node, map[string]any{
			model.StepsKey(workflow):           nil,
			model.StepIndexKey(workflow):       nil,
			model.SkipCurrentStepKey(workflow): nil,
		}),
		meta.stepField: (*model.Step)(nil),
	})
}

// recordFailure sets last_error and, if maintenance is true, puts the node
// into maintenance.
func recordFailure(ctx context.Context, tk *task.Task, lastError string, maintenance bool) error {
	diff := model.NodeDiff{"last_error": lastError}
	if maintenance {
		diff["maintenance"] = true
	}
	return tk.UpdateNode(ctx, diff)
}
