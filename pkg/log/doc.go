// SPDX-License-Identifier: BSD-3-Clause

// Package log provides the structured logging used across the conductor:
// a zerolog console sink wrapped behind the standard library's slog
// interface, plus small adapters (NATS server, oversight supervisor,
// standard log package) so every subsystem logs consistently.
//
// Every service obtains its logger through GetGlobalLogger and narrows it
// with .With("service", name) before use.
package log
