// SPDX-License-Identifier: BSD-3-Clause

package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/configdrive"
	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/objectstore"
	"github.com/metalforge/conductor/pkg/provision"
)

// Executor runs the step-sequence loop shared by the deploy, clean, and
// service workflows.
type Executor struct {
	cfg     *Config
	builder configdrive.Builder
	store   objectstore.Store
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates an Executor. builder and store are both optional: a nil
// builder means only pre-built configdrive images are accepted, and a nil
// store means store_configdrive never offloads to object storage and
// returns ErrConfigDriveTooLarge instead once the size threshold is
// exceeded.
func New(builder configdrive.Builder, store objectstore.Store, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:     newConfig(opts...),
		builder: builder,
		store:   store,
		logger:  logger.With("component", "executor"),
		tracer:  otel.Tracer("executor"),
	}
}

// Execute starts workflow on tk from scratch: it persists steps at index 0,
// validates every involved interface, runs the workflow's prepare hook,
// and then runs the step loop to completion, a WAIT, or a FAIL.
func (e *Executor) Execute(ctx context.Context, tk *task.Task, workflow string, steps []model.Step) error {
	ctx, span := e.tracer.Start(ctx, "executor.Execute", trace.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.Int("steps", len(steps)),
	))
	defer span.End()

	if _, err := lookupWorkflow(workflow); err != nil {
		return err
	}
	if err := model.CheckTargetConsistency(workflow, tk.Node().TargetProvisionState); err != nil {
		return e.fail(ctx, tk, fmt.Sprintf("target consistency check failed: %s", err), false)
	}

	if workflow == WorkflowDeploy {
		if err := e.storeConfigdrive(ctx, tk); err != nil {
			return e.fail(ctx, tk, fmt.Sprintf("store_configdrive failed: %s", err), false)
		}
	}

	if err := persistSteps(ctx, tk, workflow, steps, 0); err != nil {
		return err
	}

	if err := e.validateInterfaces(tk, steps); err != nil {
		return e.fail(ctx, tk, fmt.Sprintf("validation failed: %s", err), false)
	}

	waited, err := e.prepare(ctx, tk, workflow)
	if err != nil {
		return e.fail(ctx, tk, fmt.Sprintf("prepare failed: %s", err), false)
	}
	if waited {
		return e.wait(ctx, tk)
	}

	return e.runFrom(ctx, tk, workflow, steps, 0)
}

// Resume re-enters a workflow that is in its WAIT state, at index+1 unless
// the skip_current_*_step flag has been cleared, in which case it retries
// the current step. Resume fails with ErrNotWaiting if the node is not in
// the workflow's wait state.
func (e *Executor) Resume(ctx context.Context, tk *task.Task, workflow string) error {
	meta, err := lookupWorkflow(workflow)
	if err != nil {
		return err
	}
	node := tk.Node()
	if node.ProvisionState != meta.waitState {
		return fmt.Errorf("%w: %s", ErrNotWaiting, node.ProvisionState)
	}

	steps, index, skip, err := loadProgress(node, workflow)
	if err != nil {
		return err
	}

	if err := tk.ProcessEvent(ctx, provision.EventResume, task.ProcessEventOptions{}); err != nil {
		return err
	}

	next := index
	if skip {
		next++
	}
	return e.runFrom(ctx, tk, workflow, steps, next)
}

// Abort aborts the workflow if the current step advertises abortable=true;
// otherwise it records a sticky abort-after flag on the persisted step and
// returns ErrStepNotAbortable so the caller knows the abort did not take
// effect immediately.
func (e *Executor) Abort(ctx context.Context, tk *task.Task, workflow string) error {
	if _, err := lookupWorkflow(workflow); err != nil {
		return err
	}
	node := tk.Node()
	steps, index, _, err := loadProgress(node, workflow)
	if err != nil {
		return err
	}
	if index >= len(steps) {
		return e.fail(ctx, tk, "aborted", false)
	}
	step := steps[index]

	if !step.Abortable {
		steps[index].AbortAfter = true
		if err := persistSteps(ctx, tk, workflow, steps, index); err != nil {
			return err
		}
		return fmt.Errorf("%w: %q, abort will apply once it finishes", ErrStepNotAbortable, step.Step)
	}

	return e.fail(ctx, tk, fmt.Sprintf("aborted at step %q", step.Step), false)
}

func (e *Executor) runFrom(ctx context.Context, tk *task.Task, workflow string, steps []model.Step, index int) error {
	for index < len(steps) {
		step := steps[index]
		if err := setCurrentStep(ctx, tk, workflow, step, index); err != nil {
			return err
		}

		result, stepErr := e.executeStep(tk, workflow, step)
		if stepErr != nil {
			if step.DeploymentReboot && errors.Is(stepErr, ErrAgentLostConnection) {
				return e.waitForReconnect(ctx, tk, workflow, steps, index)
			}
			maintenance := e.tearDown(ctx, tk, workflow)
			return e.fail(ctx, tk, fmt.Sprintf("step %q failed: %s", step.Step, stepErr), maintenance)
		}
		if driver.IsWait(result) {
			return e.wait(ctx, tk)
		}
		if result != nil {
			return e.fail(ctx, tk, fmt.Sprintf("%s: step %q returned %v", ErrDriverContractViolation, step.Step, result), true)
		}
		if step.AbortAfter {
			return e.fail(ctx, tk, fmt.Sprintf("aborted after step %q", step.Step), false)
		}

		index++
	}
	return e.finish(ctx, tk, workflow)
}

func (e *Executor) executeStep(tk *task.Task, workflow string, step model.Step) (any, error) {
	deploy, err := tk.Bundle().RequireDeploy()
	if err != nil {
		return nil, err
	}
	switch workflow {
	case WorkflowDeploy:
		return deploy.ExecuteDeployStep(tk, step)
	case WorkflowClean:
		return deploy.ExecuteCleanStep(tk, step)
	case WorkflowService:
		return deploy.ExecuteServiceStep(tk, step)
	default:
		return nil, ErrUnknownWorkflow
	}
}

func (e *Executor) prepare(ctx context.Context, tk *task.Task, workflow string) (wait bool, err error) {
	deploy, err := tk.Bundle().RequireDeploy()
	if err != nil {
		return false, err
	}
	if workflow != WorkflowClean {
		return false, deploy.Prepare(tk)
	}
	result, err := deploy.PrepareCleaning(tk)
	if err != nil {
		return false, err
	}
	return driver.IsWait(result), nil
}

func (e *Executor) validateInterfaces(tk *task.Task, steps []model.Step) error {
	power, err := tk.Bundle().RequirePower()
	if err != nil {
		return err
	}
	if err := power.Validate(tk); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, step := range steps {
		if seen[step.Interface] {
			continue
		}
		seen[step.Interface] = true

		iface := tk.Bundle().InterfaceByName(step.Interface)
		if iface == nil {
			return fmt.Errorf("%w: %s", coreerrors.ErrUnsupportedDriverExtension, step.Interface)
		}
		if err := iface.Validate(tk); err != nil {
			return err
		}
	}
	return nil
}

// wait transitions to the workflow's WAIT state. The step list, index, and
// current-step field were already persisted by the caller before the step
// that triggered the wait was executed.
func (e *Executor) wait(ctx context.Context, tk *task.Task) error {
	return tk.ProcessEvent(ctx, provision.EventWait, task.ProcessEventOptions{})
}

// waitForReconnect handles the oob-reboot special case: the step is
// retried (not advanced) once the agent reconnects, so skip_current_step
// must be cleared rather than defaulted to true.
func (e *Executor) waitForReconnect(ctx context.Context, tk *task.Task, workflow string, steps []model.Step, index int) error {
	if err := tk.UpdateNode(ctx, model.NodeDiff{
		"driver_internal_info": mergeDriverInternalInfo(tk.Node(), map[string]any{
			model.SkipCurrentStepKey(workflow): false,
		}),
	}); err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "agent lost connection mid-step, waiting for reconnect",
		"node", tk.Node().UUID, "workflow", workflow, "step", steps[index].Step)
	return tk.ProcessEvent(ctx, provision.EventWait, task.ProcessEventOptions{})
}

// tearDown calls workflow's teardown hook defensively after a raised step
// error, so the driver gets a chance to release whatever the failed step
// left held. It reports whether the node should be forced into
// maintenance: never on success, always if the teardown call itself fails
// or the workflow has no driver bundle to call it on.
func (e *Executor) tearDown(ctx context.Context, tk *task.Task, workflow string) bool {
	deploy, err := tk.Bundle().RequireDeploy()
	if err != nil {
		e.logger.ErrorContext(ctx, "no deploy interface to tear down", "node", tk.Node().UUID, "workflow", workflow, "error", err)
		return true
	}

	var tearDownErr error
	switch workflow {
	case WorkflowDeploy:
		tearDownErr = deploy.TearDownDeploying(tk)
	case WorkflowClean:
		tearDownErr = deploy.TearDownCleaning(tk)
	case WorkflowService:
		tearDownErr = deploy.TearDownServicing(tk)
	default:
		return true
	}
	if tearDownErr != nil {
		e.logger.ErrorContext(ctx, "defensive teardown failed", "node", tk.Node().UUID, "workflow", workflow, "error", tearDownErr)
		return true
	}
	return false
}

func (e *Executor) fail(ctx context.Context, tk *task.Task, lastError string, maintenance bool) error {
	if err := recordFailure(ctx, tk, lastError, maintenance); err != nil {
		e.logger.ErrorContext(ctx, "failed to record last_error", "error", err)
	}
	return tk.ProcessEvent(ctx, provision.EventFail, task.ProcessEventOptions{})
}

func (e *Executor) finish(ctx context.Context, tk *task.Task, workflow string) error {
	if err := clearSteps(ctx, tk, workflow); err != nil {
		return err
	}
	return tk.ProcessEvent(ctx, provision.EventDone, task.ProcessEventOptions{})
}

// loadProgress reads the persisted step list, index, and skip flag for
// workflow out of the node's driver_internal_info.
func loadProgress(node *model.Node, workflow string) ([]model.Step, int, bool, error) {
	rawSteps, ok := node.DriverInternalInfo[model.StepsKey(workflow)]
	if !ok {
		return nil, 0, false, fmt.Errorf("%w: no persisted steps for %s", coreerrors.ErrInternal, workflow)
	}
	steps, ok := rawSteps.([]model.Step)
	if !ok {
		return nil, 0, false, fmt.Errorf("%w: malformed persisted steps for %s", coreerrors.ErrInternal, workflow)
	}

	index, _ := node.DriverInternalInfo[model.StepIndexKey(workflow)].(int)
	if err := model.CheckStepIndex(steps, index); err != nil {
		return nil, 0, false, err
	}
	skip := true
	if v, ok := node.DriverInternalInfo[model.SkipCurrentStepKey(workflow)].(bool); ok {
		skip = v
	}
	return steps, index, skip, nil
}
