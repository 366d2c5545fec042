package crud

import (
	"context"
	"errors"
	"sync"
)

type widget struct {
	ID   uint64
	Name string
}

var errNotFound = errors.New("widget not found")

// fakeImpl is a configurable Implementation that records the calls made to it.
type fakeImpl struct {
	mx    sync.Mutex
	calls []string

	dynamicOpts Options
	optionsErr  error
	store       map[uint64]widget
	detailErr   error
	processFn   func(Payload) (Payload, error)
	authorizeFn func(*Context[widget, Options]) error
	createFn    func(*Context[widget, Options]) (widget, error)
	postFn      func(widget) widget

	// Contexts seen by each hook, keyed by hook name.
	seen map[string]*Context[widget, Options]
	// Entity values observed by Authorize, copied at call time.
	authorizedEntity *widget
	processedInput   Payload
}

var _ Implementation[widget, Options] = (*fakeImpl)(nil)

func newFakeImpl(store map[uint64]widget) *fakeImpl {
	return &fakeImpl{store: store, seen: map[string]*Context[widget, Options]{}}
}

func (f *fakeImpl) record(name string, c *Context[widget, Options]) {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.calls = append(f.calls, name)
	if c != nil {
		f.seen[name] = c
	}
}

func (f *fakeImpl) called(name string) bool {
	f.mx.Lock()
	defer f.mx.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeImpl) Options(_ context.Context, _ Operation) (Options, error) {
	f.record("options", nil)
	if f.optionsErr != nil {
		return nil, f.optionsErr
	}
	return f.dynamicOpts, nil
}

func (f *fakeImpl) Detail(_ context.Context, c *Context[widget, Options]) (*widget, error) {
	f.record("detail", c)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	w, ok := f.store[c.ID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (f *fakeImpl) NotFoundError(_ *Context[widget, Options]) error {
	return errNotFound
}

func (f *fakeImpl) Authorize(_ context.Context, c *Context[widget, Options]) error {
	f.record("authorize", c)
	if c.Entity != nil {
		e := *c.Entity
		f.authorizedEntity = &e
	}
	if f.authorizeFn != nil {
		return f.authorizeFn(c)
	}
	return nil
}

func (f *fakeImpl) ProcessData(_ context.Context, data Payload, c *Context[widget, Options]) (Payload, error) {
	f.record("process", c)
	f.processedInput = data
	if f.processFn != nil {
		return f.processFn(data)
	}
	return data, nil
}

func (f *fakeImpl) Create(_ context.Context, c *Context[widget, Options]) (widget, error) {
	f.record("create", c)
	if f.createFn != nil {
		return f.createFn(c)
	}
	name, _ := c.Data["name"].(string)
	return widget{ID: 9, Name: name}, nil
}

func (f *fakeImpl) Update(_ context.Context, c *Context[widget, Options]) (widget, error) {
	f.record("update", c)
	w := *c.Entity
	if name, ok := c.Data["name"].(string); ok {
		w.Name = name
	}
	return w, nil
}

func (f *fakeImpl) Delete(_ context.Context, c *Context[widget, Options]) (widget, error) {
	f.record("delete", c)
	return *c.Entity, nil
}

func (f *fakeImpl) List(_ context.Context, c *Context[widget, Options]) ([]widget, error) {
	f.record("list", c)
	prefix, _ := c.Filters["prefix"].(string)
	out := []widget{}
	for id := uint64(1); id <= uint64(len(f.store)); id++ {
		w, ok := f.store[id]
		if ok && len(w.Name) >= len(prefix) && w.Name[:len(prefix)] == prefix {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeImpl) PostprocessData(_ context.Context, result widget, c *Context[widget, Options]) (widget, error) {
	f.record("postprocess", c)
	if f.postFn != nil {
		return f.postFn(result), nil
	}
	return result, nil
}

func (f *fakeImpl) PostprocessList(_ context.Context, results []widget, c *Context[widget, Options]) ([]widget, error) {
	f.record("postprocess", c)
	if f.postFn == nil {
		return results, nil
	}
	out := make([]widget, 0, len(results))
	for _, r := range results {
		out = append(out, f.postFn(r))
	}
	return out, nil
}
