package services

import (
	"fmt"
	"log/slog"
	"time"
)

// Option is a function that allows configuring the Resource.
type Option func(*Resource) error

// WithDefaultMaxAccessDuration sets the maximum access duration assigned to
// new services that don't specify one.
func WithDefaultMaxAccessDuration(dur time.Duration) Option {
	return func(r *Resource) error {
		if dur <= 0 {
			return fmt.Errorf("invalid default max access duration '%s': must be positive", dur)
		}
		r.defaultMaxAccessDuration = dur
		return nil
	}
}

// WithListLimit sets the default number of services returned by list calls.
func WithListLimit(limit int) Option {
	return func(r *Resource) error {
		if limit <= 0 {
			return fmt.Errorf("invalid list limit %d: must be positive", limit)
		}
		r.listLimit = min(limit, MaxListLimit)
		return nil
	}
}

// WithLogger sets the logger used by the Resource.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resource) error {
		r.logger = logger.With("component", "services")
		return nil
	}
}

// DefaultOptions returns the default Resource options.
func DefaultOptions() []Option {
	return []Option{
		WithDefaultMaxAccessDuration(time.Hour),
		WithListLimit(100),
		WithLogger(slog.Default()),
	}
}
