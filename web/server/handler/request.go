package handler

import (
	"context"
	"log/slog"

	"go.hackfix.me/crudkit/web/server/types"
)

// RequestProcessor processes incoming requests and can modify the request or context.
type RequestProcessor func(ctx context.Context, req types.Request) (context.Context, error)

// LogCaller logs the authenticated caller of the request at debug level.
func LogCaller(logger *slog.Logger) RequestProcessor {
	return func(ctx context.Context, req types.Request) (context.Context, error) {
		r := req.GetHTTPRequest()
		user := ""
		if c := req.GetCaller(); c != nil {
			user = c.User
		}
		logger.Debug("handling request", "method", r.Method, "path", r.URL.Path,
			"user", user, "request_id", RequestID(ctx))
		return ctx, nil
	}
}
