package crud

import "maps"

// Caller is the ambient caller context supplied with every handler call. Its
// fields take precedence over all other option sources.
type Caller interface {
	Fields() Options
}

// Payload is the caller-supplied data of create and update calls, or the
// filters of list calls. Its shape is only known to the Implementation.
type Payload map[string]any

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Context carries the state of a single handler call through its pipeline.
// A new Context is created for every call and is never shared between calls.
//
// Which fields are populated depends on the operation:
//   - Detail, Update and Delete: ID and Entity.
//   - Create and Update: Data and BareData.
//   - List: Filters.
type Context[T any, C Caller] struct {
	op Operation

	// Caller is the ambient context supplied by the caller of the handler.
	Caller C
	// Options are the resolved options of this call.
	Options Options
	// Write is true for operations that mutate the resource.
	Write bool
	// Safe is only true while the existing entity is being fetched by the
	// pipeline, before the operation context is constructed.
	Safe bool

	ID uint64
	// Entity is the fetched entity. Authorize may replace it, e.g. to redact
	// fields.
	Entity *T

	// Data is the working copy of the caller's data, replaced by the output of
	// ProcessData before authorization.
	Data Payload
	// BareData is the caller's data as it was received.
	BareData Payload

	// Filters are the list filters, replaced by the output of ProcessData
	// before authorization.
	Filters Payload
}

// Operation returns the kind of operation this context was created for.
func (c *Context[T, C]) Operation() Operation {
	return c.op
}

func newFetchContext[T any, C Caller](id uint64, caller C, opts Options) *Context[T, C] {
	return &Context[T, C]{
		op:      Detail,
		Caller:  caller,
		Options: opts,
		Write:   false,
		Safe:    true,
		ID:      id,
	}
}

func newDetailContext[T any, C Caller](id uint64, caller C, entity *T, opts Options) *Context[T, C] {
	return &Context[T, C]{
		op:      Detail,
		Caller:  caller,
		Options: opts,
		ID:      id,
		Entity:  entity,
	}
}

func newCreateContext[T any, C Caller](data Payload, caller C, opts Options) *Context[T, C] {
	return &Context[T, C]{
		op:       Create,
		Caller:   caller,
		Options:  opts,
		Write:    true,
		Data:     data,
		BareData: data.Clone(),
	}
}

func newUpdateContext[T any, C Caller](
	id uint64, data Payload, caller C, entity *T, opts Options,
) *Context[T, C] {
	return &Context[T, C]{
		op:       Update,
		Caller:   caller,
		Options:  opts,
		Write:    true,
		ID:       id,
		Entity:   entity,
		Data:     data,
		BareData: data.Clone(),
	}
}

func newDeleteContext[T any, C Caller](id uint64, caller C, entity *T, opts Options) *Context[T, C] {
	return &Context[T, C]{
		op:      Delete,
		Caller:  caller,
		Options: opts,
		Write:   true,
		ID:      id,
		Entity:  entity,
	}
}

func newListContext[T any, C Caller](filters Payload, caller C, opts Options) *Context[T, C] {
	return &Context[T, C]{
		op:      List,
		Caller:  caller,
		Options: opts,
		Filters: filters,
	}
}
