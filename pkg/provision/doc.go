// SPDX-License-Identifier: BSD-3-Clause

// Package provision instantiates the node provisioning state machine: the
// fixed set of states a node moves through from enrollment to active
// service, and the events that move it between them. The transition table
// is built once per process with NewMachine and then copied per node with
// Machine.Copy so that every node gets its own current-state pointer while
// sharing the same state/transition definitions.
package provision
