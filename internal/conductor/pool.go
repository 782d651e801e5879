// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/coreerrors"
)

var _ task.WorkerPool = (*SemaphorePool)(nil)

// SemaphorePool bounds concurrent continuations with a weighted semaphore:
// Submit never blocks the caller, failing fast with
// coreerrors.ErrNoFreeConductorWorker when the pool is saturated instead of
// queuing. The Conductor Service runs two of these — a primary pool for
// ordinary workflow continuations and a small reserved pool dedicated to
// heartbeat-reply paths so the primary can never starve keepalives.
type SemaphorePool struct {
	sem *semaphore.Weighted
}

// NewSemaphorePool builds a pool with the given capacity.
func NewSemaphorePool(capacity int) *SemaphorePool {
	return &SemaphorePool{sem: semaphore.NewWeighted(int64(capacity))}
}

// Submit implements task.WorkerPool.
func (p *SemaphorePool) Submit(fn func(ctx context.Context)) error {
	if !p.sem.TryAcquire(1) {
		return coreerrors.ErrNoFreeConductorWorker
	}
	go func() {
		defer p.sem.Release(1)
		fn(context.Background())
	}()
	return nil
}
