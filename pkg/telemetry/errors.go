// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import "errors"

var (
	// ErrAlreadySetup indicates a second telemetry initialization for the
	// process. NewProvider does not check for one and never returns it.
	ErrAlreadySetup = errors.New("telemetry already initialized")
	// ErrMissingServiceName indicates no service name was configured.
	ErrMissingServiceName = errors.New("telemetry service name is mandatory")
	// ErrInvalidSamplingRatio indicates a sampling ratio outside [0, 1].
	ErrInvalidSamplingRatio = errors.New("sampling ratio must be between 0.0 and 1.0")
	// ErrExporterSetupFailed indicates an OTLP exporter could not be constructed.
	ErrExporterSetupFailed = errors.New("failed to set up telemetry exporter")
)
