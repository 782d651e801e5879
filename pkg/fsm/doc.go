// SPDX-License-Identifier: BSD-3-Clause

// Package fsm implements a generic finite state machine: states are added
// one at a time with optional entry/exit hooks, transitions connect a start
// state and an event to an end state, and an outside caller drives the
// machine forward by processing events one at a time.
//
// A state may be marked terminal (no further events can be processed once
// reached) or stable (eligible to be named as another state's target). The
// target mechanism lets a state machine track where a chain of transitions
// is ultimately headed, independent of which intermediate state it is
// currently passing through.
//
// The machine itself is built on top of github.com/qmuntal/stateless, which
// supplies the trigger/permit engine that fires each transition; this
// package runs the entry/exit hooks itself and layers state metadata (terminal, stable, target), duplicate/not-found
// validation, and copy/iteration semantics on top of it.
package fsm
