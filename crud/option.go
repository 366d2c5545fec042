package crud

import "log/slog"

type settings struct {
	logger *slog.Logger
}

// Option is a function that allows configuring Handlers.
type Option func(*settings) error

// WithLogger sets the logger used by the handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger.With("component", "crud")
		return nil
	}
}

// DefaultOptions returns the default Handlers options.
func DefaultOptions() []Option {
	return []Option{
		WithLogger(slog.Default()),
	}
}
