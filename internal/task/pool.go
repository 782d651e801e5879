// SPDX-License-Identifier: BSD-3-Clause

package task

import "context"

// WorkerPool is the bounded executor a Task hands background continuations
// to. The Conductor Service owns the concrete implementation (two pools,
// primary and reserved-for-heartbeats); this package only ever depends on
// the narrow submission contract.
type WorkerPool interface {
	// Submit schedules fn to run asynchronously on the pool. It returns
	// coreerrors.ErrNoFreeConductorWorker immediately, without running fn,
	// if the pool has no free capacity.
	Submit(fn func(ctx context.Context)) error
}
