// SPDX-License-Identifier: BSD-3-Clause

package task

import "time"

// Default configuration constants.
const (
	DefaultMaxLockRetries   = 5
	DefaultLockRetryBackoff = 200 * time.Millisecond
)

// Config holds the configuration for a Manager.
type Config struct {
	// Host is this conductor's hostname, written into a Node's reservation
	// column on exclusive acquisition.
	Host string
	// MaxLockRetries bounds the number of AtomicReserve attempts before an
	// exclusive Acquire or UpgradeLock fails with coreerrors.ErrNodeLocked.
	MaxLockRetries int
	// LockRetryBackoff seeds the exponential backoff between retries.
	LockRetryBackoff time.Duration
}

// Option configures a Manager.
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) { f(cfg) }

// WithHost sets the conductor hostname written into reservations.
func WithHost(host string) Option {
	return optionFunc(func(cfg *Config) { cfg.Host = host })
}

// WithMaxLockRetries overrides the exclusive-lock retry budget.
func WithMaxLockRetries(n int) Option {
	return optionFunc(func(cfg *Config) { cfg.MaxLockRetries = n })
}

// WithLockRetryBackoff overrides the initial retry backoff interval.
func WithLockRetryBackoff(d time.Duration) Option {
	return optionFunc(func(cfg *Config) { cfg.LockRetryBackoff = d })
}

func newConfig(opts ...Option) *Config {
	cfg := &Config{
		MaxLockRetries:   DefaultMaxLockRetries,
		LockRetryBackoff: DefaultLockRetryBackoff,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}
