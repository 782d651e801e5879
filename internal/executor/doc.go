// SPDX-License-Identifier: BSD-3-Clause

// Package executor runs a node's deploy, clean, and service workflows: the
// ordered step-list loop described for the provisioning FSM's *ING states,
// including resume-after-wait, abort, the oob-reboot special case, and
// deploy's configdrive hand-off. Rescue, unrescue, adopt, and inspect are
// single-action workflows driven through the same fail/done transition
// skeleton by RunSingleAction.
package executor
