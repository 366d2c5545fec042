package crud

import "context"

// Implementation supplies the domain-specific behavior of a resource type.
// Handlers call into it in a fixed order; see the package documentation.
type Implementation[T any, C Caller] interface {
	// Options returns the dynamic default options for the operation.
	Options(ctx context.Context, op Operation) (Options, error)
	// Detail looks up the entity identified by c.ID. A nil entity with a nil
	// error means that the entity doesn't exist. Implementations should honor
	// the Safe and Write flags of the context.
	Detail(ctx context.Context, c *Context[T, C]) (*T, error)
	// NotFoundError returns the error handlers fail with when Detail finds no
	// entity.
	NotFoundError(c *Context[T, C]) error
	// Authorize returns an error if the call isn't allowed. It may replace
	// c.Entity.
	Authorize(ctx context.Context, c *Context[T, C]) error
	// ProcessData validates and normalizes the data of create and update
	// calls, or the filters of list calls.
	ProcessData(ctx context.Context, data Payload, c *Context[T, C]) (Payload, error)

	Create(ctx context.Context, c *Context[T, C]) (T, error)
	Update(ctx context.Context, c *Context[T, C]) (T, error)
	Delete(ctx context.Context, c *Context[T, C]) (T, error)
	List(ctx context.Context, c *Context[T, C]) ([]T, error)

	// PostprocessData shapes the result of detail, create, update and delete
	// calls before it's returned to the caller.
	PostprocessData(ctx context.Context, result T, c *Context[T, C]) (T, error)
	// PostprocessList shapes the results of list calls.
	PostprocessList(ctx context.Context, results []T, c *Context[T, C]) ([]T, error)
}

// Base provides pass-through defaults for the optional hooks of an
// Implementation. It's meant to be embedded.
type Base[T any, C Caller] struct{}

// Options returns no dynamic options.
func (Base[T, C]) Options(context.Context, Operation) (Options, error) {
	return Options{}, nil
}

// Authorize allows every call.
func (Base[T, C]) Authorize(context.Context, *Context[T, C]) error {
	return nil
}

// ProcessData returns data unchanged.
func (Base[T, C]) ProcessData(_ context.Context, data Payload, _ *Context[T, C]) (Payload, error) {
	return data, nil
}

// PostprocessData returns result unchanged.
func (Base[T, C]) PostprocessData(_ context.Context, result T, _ *Context[T, C]) (T, error) {
	return result, nil
}

// PostprocessList returns results unchanged.
func (Base[T, C]) PostprocessList(_ context.Context, results []T, _ *Context[T, C]) ([]T, error) {
	return results, nil
}
