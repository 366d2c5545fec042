package crud

import (
	"context"
	"maps"
	"strconv"
	"time"
)

// Options is an open mapping of option names to values. Handlers resolve it
// once per call and attach it to the Context, which should be treated as
// read-only by the Implementation.
type Options map[string]any

// Fields implements the Caller interface, so that a plain Options value can be
// used as the caller context.
func (o Options) Fields() Options {
	return o
}

// Get returns the value of the option with the given key.
func (o Options) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// String returns the option value as a string, or def if it's unset or not a
// string.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the option value as a bool, or def if it's unset or can't be
// interpreted as a bool.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the option value as an int, or def if it's unset or not numeric.
// JSON numbers decoded as float64 are accepted.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v) //nolint:gosec // Option values are small.
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Duration returns the option value as a time.Duration, or def if it's unset
// or can't be parsed.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	switch v := o[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mergeOptions merges the given sources into a new Options value. Later
// sources overwrite keys of earlier ones.
func mergeOptions(sources ...Options) Options {
	merged := Options{}
	for _, src := range sources {
		maps.Copy(merged, src)
	}
	return merged
}

// resolveOptions assembles the options for a single call. Precedence from low
// to high: options the implementation computes for the operation, options
// passed to the handler factory, and fields of the caller context.
func (h *Handlers[T, C]) resolveOptions(
	ctx context.Context, op Operation, handlerOpts Options, caller C,
) (Options, error) {
	dynamic, err := h.impl.Options(ctx, op)
	if err != nil {
		return nil, err //nolint:wrapcheck // Failures are propagated unmodified.
	}

	return mergeOptions(dynamic, handlerOpts, caller.Fields()), nil
}
