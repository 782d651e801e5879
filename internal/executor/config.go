// SPDX-License-Identifier: BSD-3-Clause

package executor

import "time"

// Default configuration constants.
const (
	// DefaultConfigDriveSizeThreshold is the inline-storage cutoff,
	// mirroring Ironic's 64KiB configdrive swift threshold default.
	DefaultConfigDriveSizeThreshold = 64 * 1024
	// DefaultDeployCallbackTimeout bounds both DEPLOYWAIT dwell time and
	// the temporary-URL TTL minted for an object-stored configdrive.
	DefaultDeployCallbackTimeout = 60 * time.Minute
	// DefaultConfigDriveContainer is the object-store container store_configdrive
	// uploads oversized configdrive images into.
	DefaultConfigDriveContainer = "ironic_configdrive_container"
)

// Config holds Executor tuning knobs.
type Config struct {
	// ConfigDriveSizeThreshold is the largest configdrive, in bytes,
	// stored inline in instance_info.configdrive; larger payloads are
	// uploaded to the object store and replaced with a temporary URL.
	ConfigDriveSizeThreshold int
	// DeployCallbackTimeout is the TTL given to a configdrive temporary URL.
	DeployCallbackTimeout time.Duration
	// ConfigDriveContainer is the object-store container used for oversized
	// configdrive uploads.
	ConfigDriveContainer string
}

// Option configures an Executor.
type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) { f(cfg) }

// WithConfigDriveSizeThreshold overrides the inline-storage cutoff.
func WithConfigDriveSizeThreshold(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.ConfigDriveSizeThreshold = n })
}

// WithDeployCallbackTimeout overrides the deploy callback timeout.
func WithDeployCallbackTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.DeployCallbackTimeout = d })
}

// WithConfigDriveContainer overrides the object-store container name.
func WithConfigDriveContainer(name string) Option {
	return optionFunc(func(cfg *Config) { cfg.ConfigDriveContainer = name })
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{
		ConfigDriveSizeThreshold: DefaultConfigDriveSizeThreshold,
		DeployCallbackTimeout:    DefaultDeployCallbackTimeout,
		ConfigDriveContainer:     DefaultConfigDriveContainer,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}
