// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"
	"log/slog"
	"time"

	"github.com/metalforge/conductor/pkg/model"
)

// runHeartbeat re-stamps this conductor's registry row every interval until
// ctx is cancelled. A single failed heartbeat is logged and retried on the
// next tick rather than treated as fatal: a conductor that misses one beat
// is still better off trying again than exiting and dropping every node it
// owns.
func runHeartbeat(ctx context.Context, conductors model.ConductorStore, host string, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conductors.Heartbeat(ctx, host); err != nil {
				logger.ErrorContext(ctx, "heartbeat failed", "host", host, "error", err)
			}
		}
	}
}
