// Package retry runs startup dials (database, broker) under exponential
// backoff until they succeed, the attempts run out or ctx ends.
package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config bounds a retry loop. Delays double from InitialDelay up to MaxDelay.
type Config struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// OnRetry, when set, sees every failed attempt except the last one.
	OnRetry func(attempt uint, err error)
}

// DefaultConfig gives a dependency roughly a minute to come up.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

func (c Config) options(ctx context.Context) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.MaxAttempts),
		retry.Delay(c.InitialDelay),
		retry.MaxDelay(c.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if c.OnRetry != nil {
		opts = append(opts, retry.OnRetry(c.OnRetry))
	}
	return opts
}

// Do calls fn until it returns nil. The error of the last attempt is returned.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return retry.Do(fn, cfg.options(ctx)...)
}

// DoWithResult is Do for constructors such as a connection dial.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return retry.DoWithData[T](fn, cfg.options(ctx)...)
}
