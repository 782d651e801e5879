// SPDX-License-Identifier: BSD-3-Clause

// Package consoleproxy declares the narrow console-proxy collaborator the
// Console interface consumes to start and stop a serial/graphical console
// session for a node. It does not implement a concrete proxy (socat, a
// websocket relay, noVNC, ...); deployments wire one in.
package consoleproxy

import (
	"context"

	"github.com/google/uuid"
)

// Proxy is the console-side collaborator consumed by pkg/driver's
// ConsoleInterface implementations.
type Proxy interface {
	// StartConsole launches cmd bound to port for nodeUUID's console.
	StartConsole(ctx context.Context, nodeUUID uuid.UUID, port int, cmd []string) error
	// StopConsole tears down the console session for nodeUUID.
	StopConsole(ctx context.Context, nodeUUID uuid.UUID) error
	// GetConsoleURL returns the client-facing URL for a session bound to port.
	GetConsoleURL(ctx context.Context, port int) (string, error)
}
