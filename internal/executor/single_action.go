// SPDX-License-Identifier: BSD-3-Clause

package executor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/provision"
)

// Single-action names: these workflows run one driver call to completion
// rather than an ordered step list.
const (
	ActionInspect   = "inspect"
	ActionAdopt     = "adopt"
	ActionRescue    = "rescue"
	ActionUnrescue  = "unrescue"
)

// singleActions records whether an action's driver call is allowed to
// return driver.Wait. Adopt and unrescue run to completion synchronously in
// this implementation; a Wait from either is a contract violation.
var singleActions = map[string]bool{
	ActionInspect:  true,
	ActionAdopt:    false,
	ActionRescue:   true,
	ActionUnrescue: false,
}

// RunSingleAction drives one of the single-action workflows (inspect,
// adopt, rescue, unrescue) through call, which performs the one driver
// call the action requires, to a fail/wait/done transition. call is
// supplied by the caller because these actions have no dedicated capability
// interface shared across all four; the conductor layer picks the driver
// method appropriate to the node's Bundle (e.g. bundle.RequireInspect().Inspect
// for ActionInspect).
func (e *Executor) RunSingleAction(ctx context.Context, tk *task.Task, action string, call func(driver.TaskContext) (any, error)) error {
	ctx, span := e.tracer.Start(ctx, "executor.RunSingleAction", trace.WithAttributes(attribute.String("action", action)))
	defer span.End()

	waitable, ok := singleActions[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkflow, action)
	}

	result, err := call(tk)
	if err != nil {
		return e.fail(ctx, tk, fmt.Sprintf("%s failed: %s", action, err), true)
	}
	if driver.IsWait(result) {
		if !waitable {
			return e.fail(ctx, tk, fmt.Sprintf("%s: %s returned Wait", ErrDriverContractViolation, action), true)
		}
		return tk.ProcessEvent(ctx, provision.EventWait, task.ProcessEventOptions{})
	}
	if result != nil {
		return e.fail(ctx, tk, fmt.Sprintf("%s: %s returned %v", ErrDriverContractViolation, action, result), true)
	}
	return tk.ProcessEvent(ctx, provision.EventDone, task.ProcessEventOptions{})
}
