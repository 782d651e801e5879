// SPDX-License-Identifier: BSD-3-Clause

package task

import "errors"

var (
	// ErrAlreadyReleased indicates a method was called on a Task after
	// Release has already run.
	ErrAlreadyReleased = errors.New("task: already released")
	// ErrAlreadySpawned indicates SpawnAfter was called more than once on
	// the same Task; only one continuation may own the reservation handoff.
	ErrAlreadySpawned = errors.New("task: continuation already spawned")
	// ErrSharedTaskMutation indicates a mutating call was attempted through
	// a shared (non-exclusive) Task.
	ErrSharedTaskMutation = errors.New("task: mutation requires an exclusive task")
)
