// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import "time"

// Config holds the telemetry provider configuration.
type Config struct {
	serviceName    string
	serviceVersion string
	grpcEndpoint   string
	insecure       bool
	samplingRatio  float64
	enableTraces   bool
	enableMetrics  bool
	batchTimeout   time.Duration
	resourceAttrs  map[string]string
}

// DefaultConfig returns a Config with a conservative set of defaults: no
// collector endpoint (telemetry stays local/no-op), full sampling, both
// signals enabled.
func DefaultConfig() *Config {
	return &Config{
		serviceName:   "conductor",
		samplingRatio: 1.0,
		enableTraces:  true,
		enableMetrics: true,
		batchTimeout:  5 * time.Second,
		resourceAttrs: map[string]string{},
	}
}

// Option configures telemetry setup.
type Option func(*Config)

// WithServiceName sets the OTel resource service.name attribute.
func WithServiceName(name string) Option {
	return func(c *Config) { c.serviceName = name }
}

// WithServiceVersion sets the OTel resource service.version attribute.
func WithServiceVersion(version string) Option {
	return func(c *Config) { c.serviceVersion = version }
}

// WithGRPCEndpoint configures an OTLP/gRPC collector endpoint. Leaving
// this unset keeps the provider in no-op mode.
func WithGRPCEndpoint(endpoint string, insecure bool) Option {
	return func(c *Config) {
		c.grpcEndpoint = endpoint
		c.insecure = insecure
	}
}

// WithSamplingRatio sets the trace ID ratio-based sampler probability.
func WithSamplingRatio(ratio float64) Option {
	return func(c *Config) { c.samplingRatio = ratio }
}

// WithResourceAttribute adds a static resource attribute.
func WithResourceAttribute(key, value string) Option {
	return func(c *Config) { c.resourceAttrs[key] = value }
}

// WithoutTraces disables the trace provider.
func WithoutTraces() Option {
	return func(c *Config) { c.enableTraces = false }
}

// WithoutMetrics disables the meter provider.
func WithoutMetrics() Option {
	return func(c *Config) { c.enableMetrics = false }
}

func (c *Config) validate() error {
	if c.serviceName == "" {
		return ErrMissingServiceName
	}
	if c.samplingRatio < 0.0 || c.samplingRatio > 1.0 {
		return ErrInvalidSamplingRatio
	}
	return nil
}
