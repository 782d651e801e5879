// SPDX-License-Identifier: BSD-3-Clause

package periodic

import "time"

// Default configuration constants.
const (
	DefaultMaxWorkers                 = 8
	DefaultPowerSyncInterval          = 60 * time.Second
	DefaultDeploySweepInterval        = 30 * time.Second
	DefaultCleanSweepInterval         = 30 * time.Second
	DefaultInspectSweepInterval       = 30 * time.Second
	DefaultOrphanRecoveryInterval     = 60 * time.Second
	DefaultTakeoverInterval           = 60 * time.Second
	DefaultSensorShipInterval         = 5 * time.Minute
	DefaultPowerStateSyncMaxRetries   = 3
	DefaultDeployCallbackTimeout      = 60 * time.Minute
	DefaultCleanCallbackTimeout       = 60 * time.Minute
	DefaultInspectCallbackTimeout     = 30 * time.Minute
	DefaultConductorLivenessThreshold = 90 * time.Second
)

// Config holds tuning knobs for every periodic loop.
type Config struct {
	MaxWorkers int

	PowerSyncInterval      time.Duration
	DeploySweepInterval    time.Duration
	CleanSweepInterval     time.Duration
	InspectSweepInterval   time.Duration
	OrphanRecoveryInterval time.Duration
	TakeoverInterval       time.Duration
	SensorShipInterval     time.Duration

	// PowerStateSyncMaxRetries is the number of consecutive failed power
	// sync attempts after which a node is moved into maintenance.
	PowerStateSyncMaxRetries int
	// ForcePowerStateDuringSync, when true, makes a mismatch overwrite the DB
	// with the reported state; when false it re-issues the desired action.
	ForcePowerStateDuringSync bool

	DeployCallbackTimeout      time.Duration
	CleanCallbackTimeout       time.Duration
	InspectCallbackTimeout     time.Duration
	ConductorLivenessThreshold time.Duration

	SensorShipperEnabled bool
	SendSensorDataTypes  []string
}

// Option configures a Config.
type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) { f(cfg) }

// WithMaxWorkers overrides the per-tick fan-out cap shared by every loop.
func WithMaxWorkers(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.MaxWorkers = n })
}

// WithPowerStateSyncMaxRetries overrides the consecutive-failure threshold.
func WithPowerStateSyncMaxRetries(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.PowerStateSyncMaxRetries = n })
}

// WithForcePowerStateDuringSync toggles mismatch-resolution behavior.
func WithForcePowerStateDuringSync(force bool) Option {
	return optionFunc(func(cfg *Config) { cfg.ForcePowerStateDuringSync = force })
}

// WithDeployCallbackTimeout overrides the deploy timeout sweeper's threshold.
func WithDeployCallbackTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.DeployCallbackTimeout = d })
}

// WithCleanCallbackTimeout overrides the clean timeout sweeper's threshold.
func WithCleanCallbackTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.CleanCallbackTimeout = d })
}

// WithInspectCallbackTimeout overrides the inspect timeout sweeper's threshold.
func WithInspectCallbackTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.InspectCallbackTimeout = d })
}

// WithConductorLivenessThreshold overrides the dead-conductor detection window.
func WithConductorLivenessThreshold(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.ConductorLivenessThreshold = d })
}

// WithSensorShipper enables the sensor shipper loop, filtered to types.
func WithSensorShipper(types ...string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.SensorShipperEnabled = true
		cfg.SendSensorDataTypes = types
	})
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{
		MaxWorkers:                 DefaultMaxWorkers,
		PowerSyncInterval:          DefaultPowerSyncInterval,
		DeploySweepInterval:        DefaultDeploySweepInterval,
		CleanSweepInterval:         DefaultCleanSweepInterval,
		InspectSweepInterval:       DefaultInspectSweepInterval,
		OrphanRecoveryInterval:     DefaultOrphanRecoveryInterval,
		TakeoverInterval:           DefaultTakeoverInterval,
		SensorShipInterval:         DefaultSensorShipInterval,
		PowerStateSyncMaxRetries:   DefaultPowerStateSyncMaxRetries,
		DeployCallbackTimeout:      DefaultDeployCallbackTimeout,
		CleanCallbackTimeout:       DefaultCleanCallbackTimeout,
		InspectCallbackTimeout:     DefaultInspectCallbackTimeout,
		ConductorLivenessThreshold: DefaultConductorLivenessThreshold,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}
