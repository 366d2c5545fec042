package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	actx "go.hackfix.me/crudkit/app/context"
	"go.hackfix.me/crudkit/resource/services"
	"go.hackfix.me/crudkit/web/server/api/v1"
	"go.hackfix.me/crudkit/web/server/middleware"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

// New returns a new web Server instance that will listen on addr.
func New(appCtx *actx.Context, addr string) (*Server, error) {
	logger := appCtx.Logger.With("component", "web-server")

	handler, err := SetupHandlers(appCtx, logger)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		Server: &http.Server{
			Handler:           handler,
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
		},
		logger: logger,
	}

	return srv, nil
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the system
// (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(appCtx *actx.Context, logger *slog.Logger) (http.Handler, error) {
	svcCfg := appCtx.Config.Services
	svcHandlers, err := services.NewHandlers(appCtx.DB, logger,
		services.WithDefaultMaxAccessDuration(svcCfg.DefaultMaxAccessDuration.V),
		services.WithListLimit(svcCfg.ListLimit.V),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api.SetupHandlers(appCtx, svcHandlers, logger)))

	return middleware.Chain(mux, middleware.Logger(logger), middleware.Recover(logger)), nil
}
