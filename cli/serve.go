package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	actx "go.hackfix.me/crudkit/app/context"
	"go.hackfix.me/crudkit/web/server"
	stypes "go.hackfix.me/crudkit/web/server/types"
)

// Serve starts the web server.
type Serve struct {
	Address string `arg:"" optional:"" help:"[host]:port to listen on. Defaults to the configured address."`
	//nolint:lll // Long struct tags are unavoidable.
	ErrorLevel stypes.ErrorLevel `help:"Detail level of error messages returned to clients, in order to avoid leaking sensitive information. This doesn't affect response status codes. Valid values: \n none: hide all error messages; minimal: sanitize error messages; full: keep error messages intact"`
}

// Validate checks the error level flag.
func (c *Serve) Validate() error {
	if c.ErrorLevel == "" {
		return nil
	}
	lvl, err := stypes.ErrorLevelFromString(string(c.ErrorLevel))
	if err != nil {
		return err //nolint:wrapcheck // Wrapped by Kong.
	}
	c.ErrorLevel = lvl

	return nil
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	srv, err := server.New(appCtx, c.Address)
	if err != nil {
		return err
	}

	// Gracefully shutdown the server if a process signal is received, or the
	// main context is done.
	// See https://dev.to/mokiat/proper-http-shutdown-in-go-3fji
	srvDone := make(chan error, 1)
	go func() {
		srvErr := srv.ListenAndServe()
		slog.Debug("web server shutdown")
		srvDone <- srvErr
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		slog.Debug("process received signal", "signal", s)
	case <-appCtx.Ctx.Done():
		slog.Debug("app context is done")
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	shutdownCtx := context.WithoutCancel(appCtx.Ctx)
	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed shutting down web server: %w", err)
	}

	return nil
}
