// SPDX-License-Identifier: BSD-3-Clause

package conductor

import "time"

// Default configuration constants.
const (
	DefaultPrimaryPoolSize     = 64
	DefaultReservedPoolSize    = 8
	DefaultHeartbeatInterval   = 30 * time.Second
	DefaultConductorLiveness   = 90 * time.Second
	DefaultRPCSubjectPrefix    = "conductor"
	DefaultRPCServiceVersion   = "0.1.0"
	DefaultShutdownTimeout     = 15 * time.Second
)

// Config holds the Conductor Service's tuning knobs.
type Config struct {
	// Host is this process's hostname: the reservation/affinity identity
	// and the Conductor registry's primary key.
	Host string
	// HardwareTypes lists the driver names this conductor announces
	// itself capable of running.
	HardwareTypes []string

	PrimaryPoolSize   int
	ReservedPoolSize  int
	HeartbeatInterval time.Duration
	ShutdownTimeout   time.Duration

	// ConductorLivenessThreshold is how long a Conductor registry row may
	// go un-heartbeaten before the ring treats it as dead and excludes it
	// from membership.
	ConductorLivenessThreshold time.Duration

	RPCSubjectPrefix  string
	RPCServiceVersion string
}

// Option configures a Config.
type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) { f(cfg) }

// WithHost sets the conductor's hostname identity.
func WithHost(host string) Option {
	return optionFunc(func(cfg *Config) { cfg.Host = host })
}

// WithHardwareTypes sets the hardware types this conductor announces.
func WithHardwareTypes(types ...string) Option {
	return optionFunc(func(cfg *Config) { cfg.HardwareTypes = types })
}

// WithPrimaryPoolSize overrides the primary worker pool's capacity.
func WithPrimaryPoolSize(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.PrimaryPoolSize = n })
}

// WithReservedPoolSize overrides the heartbeat-reserved worker pool's capacity.
func WithReservedPoolSize(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.ReservedPoolSize = n })
}

// WithHeartbeatInterval overrides the registry re-stamp interval.
func WithHeartbeatInterval(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.HeartbeatInterval = d })
}

// WithRPCSubjectPrefix overrides the NATS subject prefix RPC endpoints are
// registered under ("<prefix>.<operation>").
func WithRPCSubjectPrefix(prefix string) Option {
	return optionFunc(func(cfg *Config) { cfg.RPCSubjectPrefix = prefix })
}

// WithConductorLivenessThreshold overrides the dead-conductor detection window.
func WithConductorLivenessThreshold(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.ConductorLivenessThreshold = d })
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{
		PrimaryPoolSize:            DefaultPrimaryPoolSize,
		ReservedPoolSize:           DefaultReservedPoolSize,
		HeartbeatInterval:          DefaultHeartbeatInterval,
		ShutdownTimeout:            DefaultShutdownTimeout,
		ConductorLivenessThreshold: DefaultConductorLiveness,
		RPCSubjectPrefix:           DefaultRPCSubjectPrefix,
		RPCServiceVersion:          DefaultRPCServiceVersion,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}

func (cfg *Config) validate() error {
	if cfg.Host == "" {
		return ErrHostRequired
	}
	if len(cfg.HardwareTypes) == 0 {
		return ErrNoHardwareTypes
	}
	return nil
}
