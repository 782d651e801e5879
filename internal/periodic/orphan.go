// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// inProgressStates is the set of provision_state values that represent an
// active, resumable workflow: a node parked here by a conductor that has
// since gone offline needs its reservation cleared and its workflow failed
// rather than left stuck forever.
var inProgressStates = map[string]bool{
	provision.Deploying:  true,
	provision.DeployWait: true,
	provision.Cleaning:   true,
	provision.CleanWait:  true,
	provision.Inspecting: true,
	provision.InspectWait: true,
	provision.Rescuing:   true,
	provision.RescueWait: true,
	provision.Unrescuing: true,
	provision.Adopting:   true,
	provision.Servicing:  true,
	provision.ServiceWait: true,
	provision.Deleting:   true,
}

// OrphanRecoveryLoop clears reservations held by conductors whose heartbeat
// has gone stale and fails whatever workflow those nodes were mid-run on,
// so another conductor can pick them back up. Returns a zero Loop (never
// scheduled) if the Runner has no ConductorStore.
func (r *Runner) OrphanRecoveryLoop() Loop {
	if r.conductors == nil {
		return Loop{}
	}
	reserved := true
	return Loop{
		Name:     "orphan-recovery",
		Interval: r.cfg.OrphanRecoveryInterval,
		Purpose:  "orphan-recovery",
		Filter:   func() model.NodeFilter { return model.NodeFilter{Reserved: &reserved} },
		Work:     r.recoverIfOrphaned,
	}
}

func (r *Runner) recoverIfOrphaned(ctx context.Context, tk *task.Task) error {
	node := tk.Node()
	if node.Reservation == "" {
		return nil
	}

	offline, err := r.conductors.ListOfflineConductors(ctx, r.cfg.ConductorLivenessThreshold)
	if err != nil {
		return err
	}
	dead := false
	for _, c := range offline {
		if c.Hostname == node.Reservation {
			dead = true
			break
		}
	}
	if !dead {
		return nil
	}

	if !inProgressStates[node.ProvisionState] {
		return nil
	}

	r.logger.WarnContext(ctx, "recovering node orphaned by dead conductor",
		"node", node.UUID, "dead_conductor", node.Reservation, "provision_state", node.ProvisionState)

	if err := r.store.AtomicRelease(ctx, node.UUID, node.Reservation); err != nil {
		return err
	}
	if err := tk.UpdateNode(ctx, model.NodeDiff{"last_error": "reservation held by a conductor that stopped heartbeating"}); err != nil {
		return err
	}
	return tk.ProcessEvent(ctx, provision.EventFail, task.ProcessEventOptions{})
}
