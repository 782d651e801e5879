// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"log/slog"
	"os"
	"sync"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

var (
	globalOnce   sync.Once
	globalLogger *slog.Logger
)

// NewDefaultLogger creates a new structured logger that renders
// human-readable console output via zerolog at debug level.
func NewDefaultLogger() *slog.Logger {
	zeroLogger := zerolog.
		New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	handler := slogzerolog.Option{Level: slog.LevelDebug, Logger: &zeroLogger}.NewZerologHandler()
	return slog.New(handler)
}

// GetGlobalLogger returns the process-wide logger, creating it on first use.
// Every service obtains its base logger through this function and then
// narrows it with .With("service", name).
func GetGlobalLogger() *slog.Logger {
	globalOnce.Do(func() {
		globalLogger = NewDefaultLogger()
	})
	return globalLogger
}

// SetGlobalLogger overrides the process-wide logger, for tests and for
// callers that need a non-default sink (e.g. a buffer-backed writer).
func SetGlobalLogger(l *slog.Logger) {
	globalOnce.Do(func() {})
	globalLogger = l
}
