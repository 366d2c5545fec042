package api

import (
	"log/slog"
	"net/http"

	actx "go.hackfix.me/crudkit/app/context"
	"go.hackfix.me/crudkit/resource/services"
	"go.hackfix.me/crudkit/web/server/handler"
)

// Handler is the API endpoint handler.
type Handler struct {
	services *services.Handlers
	logger   *slog.Logger
}

// SetupHandlers configures the web API handlers.
func SetupHandlers(appCtx *actx.Context, svcHandlers *services.Handlers, logger *slog.Logger) http.Handler {
	h := Handler{services: svcHandlers, logger: logger}
	mux := http.NewServeMux()

	srvCfg := appCtx.Config.Server
	p := handler.NewPipeline().
		Auth(handler.ProxyAuth(srvCfg.UserHeader.V, appCtx.Config.Users)).
		Serialize(handler.JSON()).
		ErrorLevel(srvCfg.ErrorLevel.V).
		Logger(logger).
		ProcessRequest(handler.LogCaller(logger)).
		ProcessResponse(handler.RequestIDHeader)

	mux.HandleFunc("GET /services", handler.Handle(h.ServiceList, p))
	mux.HandleFunc("POST /services", handler.Handle(h.ServiceCreate, p))
	mux.HandleFunc("GET /services/{id}", handler.Handle(h.ServiceGet, p))
	mux.HandleFunc("PUT /services/{id}", handler.Handle(h.ServiceUpdate, p))
	mux.HandleFunc("DELETE /services/{id}", handler.Handle(h.ServiceDelete, p))

	return mux
}
