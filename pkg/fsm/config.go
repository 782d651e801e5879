// SPDX-License-Identifier: BSD-3-Clause

package fsm

// Config holds the configuration for a machine.
type Config struct {
	// Name identifies the machine in traces and log lines.
	Name string
	// EnableTracing wraps ProcessEvent calls in an OpenTelemetry span when true.
	EnableTracing bool
}

// Option configures a machine at construction time.
type Option interface {
	apply(*Config)
}

type nameOption string

func (o nameOption) apply(c *Config) { c.Name = string(o) }

// WithName sets the machine's name.
func WithName(name string) Option {
	return nameOption(name)
}

type tracingOption bool

func (o tracingOption) apply(c *Config) { c.EnableTracing = bool(o) }

// WithTracing enables or disables OpenTelemetry tracing of ProcessEvent calls.
func WithTracing(enabled bool) Option {
	return tracingOption(enabled)
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{Name: "fsm"}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}
