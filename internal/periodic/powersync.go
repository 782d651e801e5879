// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"
	"fmt"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/model"
)

const powerSyncFailuresKey = "power_sync_consecutive_failures"

// PowerSyncLoop compares each node's driver-reported power state against
// the database, correcting a mismatch by either accepting the reported
// state or re-issuing the last desired action, per ForcePowerStateDuringSync.
// Consecutive failed sync attempts (a failed power-state query or a failed
// re-issue) are counted per node; once the count reaches
// PowerStateSyncMaxRetries the node is moved into maintenance. Any
// successful sync clears the count.
func (r *Runner) PowerSyncLoop() Loop {
	reserved := false
	maintenance := false
	return Loop{
		Name:     "power-sync",
		Interval: r.cfg.PowerSyncInterval,
		Purpose:  "power-sync",
		Filter: func() model.NodeFilter {
			return model.NodeFilter{Reserved: &reserved, Maintenance: &maintenance}
		},
		Work: r.syncPowerState,
	}
}

func (r *Runner) syncPowerState(ctx context.Context, tk *task.Task) error {
	power, err := tk.Bundle().RequirePower()
	if err != nil {
		return nil
	}
	reported, err := power.GetPowerState(tk)
	if err != nil {
		return r.recordPowerSyncFailure(ctx, tk, fmt.Sprintf("power state query failed: %s", err))
	}

	node := tk.Node()
	if reported == node.PowerState {
		return clearPowerSyncFailures(ctx, tk)
	}

	if r.cfg.ForcePowerStateDuringSync {
		if err := tk.UpdateNode(ctx, model.NodeDiff{"power_state": reported}); err != nil {
			return err
		}
		return clearPowerSyncFailures(ctx, tk)
	}

	desired := node.TargetPowerState
	if desired == "" {
		desired = node.PowerState
	}
	if err := power.SetPowerState(tk, desired); err != nil {
		return r.recordPowerSyncFailure(ctx, tk, fmt.Sprintf("re-issuing power action failed: %s", err))
	}
	return clearPowerSyncFailures(ctx, tk)
}

func (r *Runner) recordPowerSyncFailure(ctx context.Context, tk *task.Task, lastError string) error {
	node := tk.Node()
	count, _ := node.DriverInternalInfo[powerSyncFailuresKey].(int)
	count++

	diff := model.NodeDiff{
		"driver_internal_info": mergeInfo(node, map[string]any{powerSyncFailuresKey: count}),
		"last_error":           lastError,
	}
	if count >= r.cfg.PowerStateSyncMaxRetries {
		diff["maintenance"] = true
	}
	return tk.UpdateNode(ctx, diff)
}

func clearPowerSyncFailures(ctx context.Context, tk *task.Task) error {
	node := tk.Node()
	if _, ok := node.DriverInternalInfo[powerSyncFailuresKey]; !ok {
		return nil
	}
	return tk.UpdateNode(ctx, model.NodeDiff{
		"driver_internal_info": mergeInfo(node, map[string]any{powerSyncFailuresKey: nil}),
	})
}

func mergeInfo(node *model.Node, kv map[string]any) map[string]any {
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
