package dispatcher

import "time"

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables invocation timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps command execution in panic recovery.
	// command.ErrNotImplemented is always re-raised.
	RecoverFromPanic bool

	// DefaultTimeout bounds a single invocation.
	// Zero means no timeout.
	DefaultTimeout time.Duration

	// MaxRepeatCount limits the count recorded for an invocation.
	// Zero means no limit.
	MaxRepeatCount int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    false,
		RecoverFromPanic: true,
		DefaultTimeout:   0,
		MaxRepeatCount:   10000,
	}
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithTimeout returns a copy of the config with the default timeout set.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.DefaultTimeout = timeout
	return c
}

// WithMaxRepeatCount returns a copy of the config with the max repeat count set.
func (c Config) WithMaxRepeatCount(max int) Config {
	c.MaxRepeatCount = max
	return c
}

// clampCount applies MaxRepeatCount to count.
func (c Config) clampCount(count int) int {
	if count < 0 {
		return 0
	}
	if c.MaxRepeatCount > 0 && count > c.MaxRepeatCount {
		return c.MaxRepeatCount
	}
	return count
}
