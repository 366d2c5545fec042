package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// Logger logs request details and response metrics.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			attrs := []any{
				"response_code", m.Code,
				"duration", m.Duration,
				"bytes_sent", m.Written,
				"remote_addr", r.RemoteAddr,
			}
			if reqID := w.Header().Get("X-Request-Id"); reqID != "" {
				attrs = append(attrs, "request_id", reqID)
			}
			logger.Info(fmt.Sprintf("%s %s", r.Method, r.URL), attrs...)
		})
	}
}

// Recover responds with 500 Internal Server Error if a handler panics, and
// logs the panic value.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler { //nolint:errorlint // Sentinel panic value.
						panic(v)
					}
					logger.Error("recovered from panic", "panic", fmt.Sprint(v),
						"method", r.Method, "path", r.URL.Path)
					http.Error(w, http.StatusText(http.StatusInternalServerError),
						http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
