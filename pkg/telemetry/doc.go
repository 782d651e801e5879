// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry wires OpenTelemetry tracing and metrics for the
// conductor. Every long-running component (Task Manager, Step Executor,
// Conductor Service, periodic loops) takes its Tracer from the global
// OpenTelemetry providers that NewProvider installs; with no collector
// endpoint configured they stay no-op, so the conductor never blocks or
// panics for lack of an observability backend.
package telemetry
