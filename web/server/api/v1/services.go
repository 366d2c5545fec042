package api

import (
	"context"
	"net/http"

	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/web/server/types"
)

// handlerOptions returns the handler-level options of API calls. The
// "compact" query parameter omits timestamps and descriptions from responses.
func handlerOptions(r *http.Request) crud.Options {
	opts := crud.Options{"source": "api"}
	if r.URL.Query().Has("compact") {
		opts["compact"] = r.URL.Query().Get("compact") != "false"
	}
	return opts
}

// ServiceList returns the services matching the query filters.
func (h *Handler) ServiceList(
	ctx context.Context, req *types.ServiceListRequest,
) (*types.ServiceListResponse, error) {
	list := h.services.List(handlerOptions(req.Request))
	svcs, err := list(ctx, req.Filters, req.Caller)
	if err != nil {
		return nil, err //nolint:wrapcheck // Mapped to an HTTP error by the pipeline.
	}

	return types.NewServiceListResponse(svcs), nil
}

// ServiceGet returns a single service.
func (h *Handler) ServiceGet(
	ctx context.Context, req *types.ServiceIDRequest,
) (*types.ServiceResponse, error) {
	detail := h.services.Detail(handlerOptions(req.Request))
	svc, err := detail(ctx, req.ID, req.Caller)
	if err != nil {
		return nil, err //nolint:wrapcheck // Mapped to an HTTP error by the pipeline.
	}

	return types.NewServiceResponse(http.StatusOK, svc), nil
}

// ServiceCreate creates a new service.
func (h *Handler) ServiceCreate(
	ctx context.Context, req *types.ServiceCreateRequest,
) (*types.ServiceResponse, error) {
	create := h.services.Create(handlerOptions(req.Request))
	svc, err := create(ctx, req.Payload(), req.Caller)
	if err != nil {
		return nil, err //nolint:wrapcheck // Mapped to an HTTP error by the pipeline.
	}

	return types.NewServiceResponse(http.StatusCreated, svc), nil
}

// ServiceUpdate updates an existing service with the set fields.
func (h *Handler) ServiceUpdate(
	ctx context.Context, req *types.ServiceUpdateRequest,
) (*types.ServiceResponse, error) {
	update := h.services.Update(handlerOptions(req.Request))
	svc, err := update(ctx, req.ID, req.Payload(), req.Caller)
	if err != nil {
		return nil, err //nolint:wrapcheck // Mapped to an HTTP error by the pipeline.
	}

	return types.NewServiceResponse(http.StatusOK, svc), nil
}

// ServiceDelete removes a service, and returns its last state.
func (h *Handler) ServiceDelete(
	ctx context.Context, req *types.ServiceIDRequest,
) (*types.ServiceResponse, error) {
	del := h.services.Delete(handlerOptions(req.Request))
	svc, err := del(ctx, req.ID, req.Caller)
	if err != nil {
		return nil, err //nolint:wrapcheck // Mapped to an HTTP error by the pipeline.
	}

	return types.NewServiceResponse(http.StatusOK, svc), nil
}
