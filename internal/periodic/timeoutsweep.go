// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"
	"fmt"
	"time"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// timeoutSweep describes one <workflow>WAIT timeout sweeper: filter nodes
// stuck past their callback timeout, fail them, and clear the workflow's
// step bookkeeping so it cannot loop back into the same wait state.
type timeoutSweep struct {
	name      string
	waitState string
	timeout   time.Duration
	workflow  string
}

func (r *Runner) deployTimeoutSweep() timeoutSweep {
	return timeoutSweep{name: "deploy-timeout", waitState: provision.DeployWait, timeout: r.cfg.DeployCallbackTimeout, workflow: "deploy"}
}

func (r *Runner) cleanTimeoutSweep() timeoutSweep {
	return timeoutSweep{name: "clean-timeout", waitState: provision.CleanWait, timeout: r.cfg.CleanCallbackTimeout, workflow: "clean"}
}

func (r *Runner) inspectTimeoutSweep() timeoutSweep {
	return timeoutSweep{name: "inspect-timeout", waitState: provision.InspectWait, timeout: r.cfg.InspectCallbackTimeout, workflow: "inspect"}
}

// DeployTimeoutSweepLoop fails nodes stuck in DEPLOYWAIT past the deploy
// callback timeout.
func (r *Runner) DeployTimeoutSweepLoop() Loop { return r.timeoutSweepLoop(r.cfg.DeploySweepInterval, r.deployTimeoutSweep()) }

// CleanTimeoutSweepLoop fails nodes stuck in CLEANWAIT past the clean
// callback timeout, additionally clearing clean_step/clean_step_index.
func (r *Runner) CleanTimeoutSweepLoop() Loop { return r.timeoutSweepLoop(r.cfg.CleanSweepInterval, r.cleanTimeoutSweep()) }

// InspectTimeoutSweepLoop fails nodes stuck in INSPECTWAIT past the inspect
// callback timeout. Inspection keeps no step list, so only last_error is
// set before the fail transition; no step bookkeeping is cleared.
func (r *Runner) InspectTimeoutSweepLoop() Loop {
	return r.timeoutSweepLoop(r.cfg.InspectSweepInterval, r.inspectTimeoutSweep())
}

func (r *Runner) timeoutSweepLoop(interval time.Duration, sweep timeoutSweep) Loop {
	return Loop{
		Name:     sweep.name,
		Interval: interval,
		Purpose:  sweep.name,
		Filter: func() model.NodeFilter {
			return model.NodeFilter{
				ProvisionState:    sweep.waitState,
				ProvisionedBefore: time.Now().Add(-sweep.timeout),
			}
		},
		Sort: model.NodeSort{Column: "provision_updated_at"},
		Work: func(ctx context.Context, tk *task.Task) error {
			return r.failOnTimeout(ctx, tk, sweep)
		},
	}
}

func (r *Runner) failOnTimeout(ctx context.Context, tk *task.Task, sweep timeoutSweep) error {
	node := tk.Node()
	diff := model.NodeDiff{"last_error": fmt.Sprintf("timed out waiting in %s after %s", sweep.waitState, sweep.timeout)}
	if sweep.workflow != "inspect" {
		diff[sweep.workflow+"_step"] = (*model.Step)(nil)
		diff["driver_internal_info"] = mergeInfo(node, map[string]any{
			model.StepsKey(sweep.workflow):           nil,
			model.StepIndexKey(sweep.workflow):       nil,
			model.SkipCurrentStepKey(sweep.workflow): nil,
		})
	}
	if err := tk.UpdateNode(ctx, diff); err != nil {
		return err
	}
	return tk.ProcessEvent(ctx, provision.EventFail, task.ProcessEventOptions{})
}
