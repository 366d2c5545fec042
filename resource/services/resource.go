package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	aerrors "go.hackfix.me/crudkit/app/errors"
	"go.hackfix.me/crudkit/authz"
	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/db/types"
)

type (
	// Context is the execution context of service handlers.
	Context = crud.Context[models.Service, *authz.Caller]
	// Handlers are the generated service handlers.
	Handlers = crud.Handlers[models.Service, *authz.Caller]
)

// Resource implements the service resource on top of the database.
type Resource struct {
	db                       types.Querier
	defaultMaxAccessDuration time.Duration
	listLimit                int
	logger                   *slog.Logger
}

var _ crud.Implementation[models.Service, *authz.Caller] = (*Resource)(nil)

// New returns a new Resource that stores services in d.
func New(d types.Querier, opts ...Option) (*Resource, error) {
	if d == nil {
		return nil, errors.New("database is required")
	}

	r := &Resource{db: d}
	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// NewHandlers returns the handlers of a new Resource.
func NewHandlers(d types.Querier, logger *slog.Logger, opts ...Option) (*Handlers, error) {
	r, err := New(d, append(opts, WithLogger(logger))...)
	if err != nil {
		return nil, err
	}

	return crud.New[models.Service, *authz.Caller](r, crud.WithLogger(logger))
}

// Options returns the configured defaults for the operation.
func (r *Resource) Options(_ context.Context, op crud.Operation) (crud.Options, error) {
	opts := crud.Options{"resource": "services"}
	switch op {
	case crud.Create:
		opts["default_max_access_duration"] = r.defaultMaxAccessDuration
	case crud.List:
		opts[KeyLimit] = r.listLimit
		opts[KeyOrder] = "name"
	case crud.Detail, crud.Update, crud.Delete:
	}

	return opts, nil
}

// Detail loads the service with the ID set on the context. It returns a nil
// service if it doesn't exist.
func (r *Resource) Detail(ctx context.Context, c *Context) (*models.Service, error) {
	if c.ID == 0 {
		return nil, nil
	}

	svc := &models.Service{ID: c.ID}
	if err := svc.Load(ctx, r.db); err != nil {
		if models.IsNoResult(err) {
			return nil, nil
		}
		return nil, err //nolint:wrapcheck // Errors are handled by the transport.
	}

	r.logger.Debug("loaded service", "id", svc.ID, "name", svc.Name, "safe", c.Safe, "write", c.Write)

	return svc, nil
}

// NotFoundError returns the error for a missing service.
func (r *Resource) NotFoundError(c *Context) error {
	return types.NoResultError{ModelName: "service", ID: fmt.Sprintf("ID %d", c.ID)}
}

// Authorize checks that the caller has a role that allows performing the
// operation on the service.
func (r *Resource) Authorize(_ context.Context, c *Context) error {
	var action, target string
	switch c.Operation() {
	case crud.Detail:
		action, target = authz.ActionRead, "services/"+c.Entity.Name
	case crud.List:
		action, target = authz.ActionRead, "services/*"
	case crud.Create:
		name, _ := c.Data[KeyName].(string)
		action, target = authz.ActionCreate, "services/"+name
	case crud.Update:
		action, target = authz.ActionUpdate, "services/"+c.Entity.Name
	case crud.Delete:
		action, target = authz.ActionDelete, "services/"+c.Entity.Name
	}

	allowed, err := c.Caller.Can(action, target)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}
	if !allowed {
		user := ""
		if c.Caller != nil {
			user = c.Caller.User
		}
		r.logger.Warn("denied access", "user", user, "action", action, "target", target)
		return aerrors.PermissionError{User: user, Action: action, Target: target}
	}

	return nil
}

// ProcessData validates and normalizes service data or list filters.
func (r *Resource) ProcessData(_ context.Context, data crud.Payload, c *Context) (crud.Payload, error) {
	switch c.Operation() {
	case crud.Create:
		return processCreate(data, c.Options)
	case crud.Update:
		return processUpdate(data, *c.Entity)
	case crud.List:
		return processFilters(data, c.Options)
	case crud.Detail, crud.Delete:
	}

	return data, nil
}

// Create stores a new service.
func (r *Resource) Create(ctx context.Context, c *Context) (models.Service, error) {
	svc := serviceFromPayload(c.Data)
	if err := svc.Save(ctx, r.db, false); err != nil {
		return models.Service{}, err //nolint:wrapcheck // Errors are handled by the transport.
	}

	r.logger.Info("created service", "id", svc.ID, "name", svc.Name, "user", c.Options.String("user", ""))

	return svc, nil
}

// Update stores the updated service data.
func (r *Resource) Update(ctx context.Context, c *Context) (models.Service, error) {
	svc := serviceFromPayload(c.Data)
	svc.ID = c.Entity.ID
	svc.CreatedAt = c.Entity.CreatedAt
	if err := svc.Save(ctx, r.db, true); err != nil {
		return models.Service{}, err //nolint:wrapcheck // Errors are handled by the transport.
	}

	r.logger.Info("updated service", "id", svc.ID, "name", svc.Name, "user", c.Options.String("user", ""))

	return svc, nil
}

// Delete removes the service, and returns its last state.
func (r *Resource) Delete(ctx context.Context, c *Context) (models.Service, error) {
	svc := *c.Entity
	if err := (&models.Service{ID: svc.ID}).Delete(ctx, r.db); err != nil {
		return models.Service{}, err //nolint:wrapcheck // Errors are handled by the transport.
	}

	r.logger.Info("deleted service", "id", svc.ID, "name", svc.Name, "user", c.Options.String("user", ""))

	return svc, nil
}

// List returns the services matching the processed filters.
func (r *Resource) List(ctx context.Context, c *Context) ([]models.Service, error) {
	services, err := models.Services(ctx, r.db, queryFilter(c.Filters))
	if err != nil {
		return nil, err //nolint:wrapcheck // Errors are handled by the transport.
	}

	out := make([]models.Service, 0, len(services))
	for _, svc := range services {
		out = append(out, *svc)
	}

	return out, nil
}

// PostprocessData normalizes timestamps to UTC. If the "compact" option is
// set, timestamps and the description are omitted.
func (r *Resource) PostprocessData(_ context.Context, svc models.Service, c *Context) (models.Service, error) {
	svc.CreatedAt = svc.CreatedAt.UTC()
	svc.UpdatedAt = svc.UpdatedAt.UTC()
	if c.Options.Bool("compact", false) {
		svc.CreatedAt, svc.UpdatedAt = time.Time{}, time.Time{}
		svc.Description = ""
	}

	return svc, nil
}

// PostprocessList applies PostprocessData to every service.
func (r *Resource) PostprocessList(ctx context.Context, services []models.Service, c *Context) ([]models.Service, error) {
	out := make([]models.Service, 0, len(services))
	for _, svc := range services {
		svc, err := r.PostprocessData(ctx, svc, c)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}

	return out, nil
}
