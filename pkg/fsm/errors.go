// SPDX-License-Identifier: BSD-3-Clause

package fsm

import "errors"

var (
	// ErrDuplicate indicates a state or event was already defined.
	ErrDuplicate = errors.New("fsm: already defined")
	// ErrInvalidState indicates an operation is not valid given the
	// machine's current state (uninitialized, terminal, or a target/start
	// state that violates the stable-state requirement).
	ErrInvalidState = errors.New("fsm: invalid state")
	// ErrNotFound indicates a reference to a state or event that does not
	// exist in the machine.
	ErrNotFound = errors.New("fsm: not found")
)
