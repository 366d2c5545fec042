package crud

import (
	"context"
	"errors"
	"log/slog"
)

// DetailHandler returns the entity identified by id.
type DetailHandler[T any, C Caller] func(ctx context.Context, id uint64, caller C) (T, error)

// CreateHandler creates a new entity from data.
type CreateHandler[T any, C Caller] func(ctx context.Context, data Payload, caller C) (T, error)

// UpdateHandler updates the entity identified by id with data.
type UpdateHandler[T any, C Caller] func(ctx context.Context, id uint64, data Payload, caller C) (T, error)

// DeleteHandler deletes the entity identified by id.
type DeleteHandler[T any, C Caller] func(ctx context.Context, id uint64, caller C) (T, error)

// ListHandler returns the entities matching filters.
type ListHandler[T any, C Caller] func(ctx context.Context, filters Payload, caller C) ([]T, error)

// Handlers creates handlers for a single resource type backed by an
// Implementation.
type Handlers[T any, C Caller] struct {
	impl   Implementation[T, C]
	logger *slog.Logger
}

// New returns a new Handlers instance for the given implementation.
func New[T any, C Caller](impl Implementation[T, C], opts ...Option) (*Handlers[T, C], error) {
	if impl == nil {
		return nil, errors.New("service implementation is required")
	}

	s := &settings{}
	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return &Handlers[T, C]{impl: impl, logger: s.logger}, nil
}

// Detail returns a handler that fetches a single entity. The given options are
// the handler-level defaults, merged in order. If Authorize clears the context
// entity, the handler returns the implementation's not-found error.
func (h *Handlers[T, C]) Detail(options ...Options) DetailHandler[T, C] {
	handlerOpts := mergeOptions(options...)
	return func(ctx context.Context, id uint64, caller C) (T, error) {
		var zero T
		logger := h.logger.With("operation", Detail, "id", id)

		opts, err := h.resolveOptions(ctx, Detail, handlerOpts, caller)
		if err != nil {
			return zero, h.fail(logger, "resolve options", err)
		}

		entity, err := h.safeDetail(ctx, id, caller, opts)
		if err != nil {
			return zero, h.fail(logger, "fetch", err)
		}

		c := newDetailContext(id, caller, entity, opts)
		if err = h.impl.Authorize(ctx, c); err != nil {
			return zero, h.fail(logger, "authorize", err)
		}

		// Authorize may have replaced the entity.
		if c.Entity == nil {
			return zero, h.fail(logger, "authorize", h.impl.NotFoundError(c))
		}

		result, err := h.impl.PostprocessData(ctx, *c.Entity, c)
		if err != nil {
			return zero, h.fail(logger, "postprocess", err)
		}

		return result, nil
	}
}

// Create returns a handler that creates a new entity.
func (h *Handlers[T, C]) Create(options ...Options) CreateHandler[T, C] {
	handlerOpts := mergeOptions(options...)
	return func(ctx context.Context, data Payload, caller C) (T, error) {
		var zero T
		logger := h.logger.With("operation", Create)

		opts, err := h.resolveOptions(ctx, Create, handlerOpts, caller)
		if err != nil {
			return zero, h.fail(logger, "resolve options", err)
		}

		c := newCreateContext[T](data, caller, opts)
		if c.Data, err = h.impl.ProcessData(ctx, c.Data, c); err != nil {
			return zero, h.fail(logger, "process data", err)
		}

		if err = h.impl.Authorize(ctx, c); err != nil {
			return zero, h.fail(logger, "authorize", err)
		}

		created, err := h.impl.Create(ctx, c)
		if err != nil {
			return zero, h.fail(logger, "create", err)
		}

		result, err := h.impl.PostprocessData(ctx, created, c)
		if err != nil {
			return zero, h.fail(logger, "postprocess", err)
		}

		return result, nil
	}
}

// Update returns a handler that updates an existing entity.
func (h *Handlers[T, C]) Update(options ...Options) UpdateHandler[T, C] {
	handlerOpts := mergeOptions(options...)
	return func(ctx context.Context, id uint64, data Payload, caller C) (T, error) {
		var zero T
		logger := h.logger.With("operation", Update, "id", id)

		opts, err := h.resolveOptions(ctx, Update, handlerOpts, caller)
		if err != nil {
			return zero, h.fail(logger, "resolve options", err)
		}

		entity, err := h.safeDetail(ctx, id, caller, opts)
		if err != nil {
			return zero, h.fail(logger, "fetch", err)
		}

		c := newUpdateContext(id, data, caller, entity, opts)
		if c.Data, err = h.impl.ProcessData(ctx, c.Data, c); err != nil {
			return zero, h.fail(logger, "process data", err)
		}

		if err = h.impl.Authorize(ctx, c); err != nil {
			return zero, h.fail(logger, "authorize", err)
		}

		updated, err := h.impl.Update(ctx, c)
		if err != nil {
			return zero, h.fail(logger, "update", err)
		}

		result, err := h.impl.PostprocessData(ctx, updated, c)
		if err != nil {
			return zero, h.fail(logger, "postprocess", err)
		}

		return result, nil
	}
}

// Delete returns a handler that deletes an existing entity.
func (h *Handlers[T, C]) Delete(options ...Options) DeleteHandler[T, C] {
	handlerOpts := mergeOptions(options...)
	return func(ctx context.Context, id uint64, caller C) (T, error) {
		var zero T
		logger := h.logger.With("operation", Delete, "id", id)

		opts, err := h.resolveOptions(ctx, Delete, handlerOpts, caller)
		if err != nil {
			return zero, h.fail(logger, "resolve options", err)
		}

		entity, err := h.safeDetail(ctx, id, caller, opts)
		if err != nil {
			return zero, h.fail(logger, "fetch", err)
		}

		c := newDeleteContext(id, caller, entity, opts)
		if err = h.impl.Authorize(ctx, c); err != nil {
			return zero, h.fail(logger, "authorize", err)
		}

		deleted, err := h.impl.Delete(ctx, c)
		if err != nil {
			return zero, h.fail(logger, "delete", err)
		}

		result, err := h.impl.PostprocessData(ctx, deleted, c)
		if err != nil {
			return zero, h.fail(logger, "postprocess", err)
		}

		return result, nil
	}
}

// List returns a handler that lists entities matching the given filters.
func (h *Handlers[T, C]) List(options ...Options) ListHandler[T, C] {
	handlerOpts := mergeOptions(options...)
	return func(ctx context.Context, filters Payload, caller C) ([]T, error) {
		logger := h.logger.With("operation", List)

		opts, err := h.resolveOptions(ctx, List, handlerOpts, caller)
		if err != nil {
			return nil, h.fail(logger, "resolve options", err)
		}

		c := newListContext[T](filters, caller, opts)
		if c.Filters, err = h.impl.ProcessData(ctx, c.Filters, c); err != nil {
			return nil, h.fail(logger, "process data", err)
		}

		if err = h.impl.Authorize(ctx, c); err != nil {
			return nil, h.fail(logger, "authorize", err)
		}

		listed, err := h.impl.List(ctx, c)
		if err != nil {
			return nil, h.fail(logger, "list", err)
		}

		results, err := h.impl.PostprocessList(ctx, listed, c)
		if err != nil {
			return nil, h.fail(logger, "postprocess", err)
		}

		return results, nil
	}
}

// safeDetail fetches the entity a detail, update or delete call works on, and
// fails with the implementation's not found error if it doesn't exist.
func (h *Handlers[T, C]) safeDetail(ctx context.Context, id uint64, caller C, opts Options) (*T, error) {
	c := newFetchContext[T](id, caller, opts)
	entity, err := h.impl.Detail(ctx, c)
	if err != nil {
		return nil, err //nolint:wrapcheck // Failures are propagated unmodified.
	}
	if entity == nil {
		return nil, h.impl.NotFoundError(c)
	}

	return entity, nil
}

// fail logs the step that failed and returns err unmodified.
func (h *Handlers[T, C]) fail(logger *slog.Logger, step string, err error) error {
	logger.Debug("handler failed", "step", step, "error", err)
	return err
}
