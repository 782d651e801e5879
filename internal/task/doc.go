// SPDX-License-Identifier: BSD-3-Clause

// Package task implements the conductor's per-node unit of work: exclusive
// or shared acquisition of a Node's reservation, the driver Bundle chosen
// from its hardware type, its Ports and Portgroups, and a provisioning FSM
// positioned at the Node's current state.
//
// A Task's reservation is released exactly once, by whichever path
// terminates last: the synchronous caller if it never hands off work, or
// the background continuation scheduled through SpawnAfter if it does.
package task
