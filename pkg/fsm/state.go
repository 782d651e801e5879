// SPDX-License-Identifier: BSD-3-Clause

package fsm

import "context"

// EnterFunc is invoked when a state is entered. state is the state being
// entered, event is the trigger that caused the transition.
type EnterFunc func(ctx context.Context, state, event string) error

// ExitFunc is invoked when a state is exited. state is the state being
// exited, event is the trigger that caused the transition.
type ExitFunc func(ctx context.Context, state, event string) error

type stateDef struct {
	name     string
	terminal bool
	stable   bool
	target   string
	onEnter  EnterFunc
	onExit   ExitFunc
}

// StateOption configures a state added via AddState.
type StateOption func(*stateDef)

// WithOnEnter attaches a hook run when the state is entered.
func WithOnEnter(fn EnterFunc) StateOption {
	return func(d *stateDef) { d.onEnter = fn }
}

// WithOnExit attaches a hook run when the state is exited.
func WithOnExit(fn ExitFunc) StateOption {
	return func(d *stateDef) { d.onExit = fn }
}

// WithTerminal marks the state as terminal: once reached, no further event
// can be processed from it.
func WithTerminal() StateOption {
	return func(d *stateDef) { d.terminal = true }
}

// WithStable marks the state as eligible to be named as another state's
// target via WithTargetState.
func WithStable() StateOption {
	return func(d *stateDef) { d.stable = true }
}

// WithTargetState records the state that this state is ultimately heading
// towards. The named state must already have been added with WithStable.
func WithTargetState(target string) StateOption {
	return func(d *stateDef) { d.target = target }
}

// Transition describes one (start, event, end) edge of the machine.
type Transition struct {
	Start string
	Event string
	End   string
}
