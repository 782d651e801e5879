// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/hashring"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// TakeoverLoop rebalances ACTIVE nodes whose recorded conductor_affinity no
// longer matches who the hash ring currently maps them to: it runs the
// deploy interface's prepare/take_over sequence and restarts the console if
// one was running, then updates conductor_affinity to this host. Returns a
// zero Loop (never scheduled) if the Runner has no ConductorStore.
func (r *Runner) TakeoverLoop() Loop {
	if r.conductors == nil {
		return Loop{}
	}
	return Loop{
		Name:     "takeover",
		Interval: r.cfg.TakeoverInterval,
		Purpose:  "takeover",
		Filter:   func() model.NodeFilter { return model.NodeFilter{ProvisionState: provision.Active} },
		Work:     r.takeoverIfRebalanced,
	}
}

func (r *Runner) takeoverIfRebalanced(ctx context.Context, tk *task.Task) error {
	node := tk.Node()
	if node.ConductorAffinity == r.host {
		return nil
	}

	owner, err := r.ring.Lookup(hashring.NodeKey(node.UUID, node.Driver))
	if err != nil || owner != r.host {
		return nil
	}

	deploy, err := tk.Bundle().RequireDeploy()
	if err != nil {
		return err
	}
	if err := deploy.Prepare(tk); err != nil {
		return err
	}
	if err := deploy.TakeOver(tk); err != nil {
		return err
	}

	if console, err := tk.Bundle().RequireConsole(); err == nil {
		if enabled, _ := console.ConsoleIsEnabled(tk); enabled {
			if err := console.StopConsole(tk); err != nil {
				r.logger.WarnContext(ctx, "failed to stop console before takeover restart", "node", node.UUID, "error", err)
			}
			if err := console.StartConsole(tk); err != nil {
				r.logger.WarnContext(ctx, "failed to restart console after takeover", "node", node.UUID, "error", err)
			}
		}
	}

	return tk.UpdateNode(ctx, model.NodeDiff{"conductor_affinity": r.host})
}
