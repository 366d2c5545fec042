package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"

	"go.hackfix.me/crudkit/web/server/types"
)

// Handle creates an HTTP handler function that processes requests through a
// configurable pipeline. It supports generic request/response types and handles
// authentication, request/response processing, and error handling
// automatically.
//
// It relies on reflection to create the request and response values, and on
// passing values between components using the request context.
//
//nolint:gocognit // The complexity is a bit high, but refactoring this would hurt legibility.
func Handle[Req types.Request, Resp types.Response](
	handlerFn func(context.Context, Req) (Resp, error),
	p *Pipeline,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := createInstance[Req]()
		var resp types.Response = createInstance[Resp]()
		var err error

		req.SetHTTPRequest(r)

		// The error handler writes to whichever response is current, since the
		// handler may return its own.
		handleErr := func(err error) bool {
			return setError(ctx, resp, err, p.errorLevel, p.logger)
		}

		// Response handling is deferred, since it should happen in both success and
		// error scenarios.
		defer func() {
			// Allow response handlers to modify headers.
			resp.SetHeader(w.Header())

			// 6. Response serialization (optional)
			if p.serializer != nil {
				if ctx, err = p.serializer.Serialize(ctx, resp); handleErr(err) {
					return
				}
			}

			// 7. Response processing
			for _, process := range p.responseProcessors {
				ctx, err = process(ctx, resp)
				if handleErr(err) {
					break
				}
			}

			// 8. Write the response
			if err = writeResponse(ctx, w, resp); err != nil {
				p.logger.Error("failed writing response", "error", err.Error())
			}
		}()

		// 1. Authentication (optional)
		if p.auth != nil {
			if ctx, err = p.auth(ctx, req); handleErr(err) {
				return
			}
		}

		// 2. Request deserialization (optional)
		if p.serializer != nil {
			if ctx, err = p.serializer.Deserialize(ctx, req); handleErr(err) {
				return
			}
		}

		// 3. Request validation (optional)
		if reqV, ok := any(req).(interface{ Validate() error }); ok {
			if err = reqV.Validate(); handleErr(err) {
				return
			}
		}

		// 4. Request processing
		for _, process := range p.requestProcessors {
			if ctx, err = process(ctx, req); handleErr(err) {
				return
			}
		}

		// 5. Run the handler
		handlerResp, handlerErr := handlerFn(ctx, req)
		if !isNilResponse(handlerResp) {
			resp = handlerResp
		}
		handleErr(handlerErr)
	}
}

// createInstance returns a new instance of type T.
//
//nolint:ireturn,nolintlint // Required for generic functionality.
func createInstance[T any]() T {
	var zero T
	tType := reflect.TypeOf(zero)

	if tType == nil {
		panic("cannot create instance of nil interface type")
	}

	switch tType.Kind() {
	case reflect.Ptr:
		// Create new instance of the underlying type
		return reflect.New(tType.Elem()).Interface().(T) //nolint:errcheck,forcetypeassert // It's fine.
	case reflect.Interface:
		panic("cannot create instance of interface type - need concrete type")
	default:
		// For value types, return zero value directly
		return zero
	}
}

func isNilResponse(resp types.Response) bool {
	if resp == nil {
		return true
	}
	v := reflect.ValueOf(resp)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// setError converts err into an HTTP error on the response, and reports
// whether err was set.
func setError(
	ctx context.Context, resp types.Response, err error, errLvl types.ErrorLevel, logger *slog.Logger,
) bool {
	if err == nil {
		return false
	}

	terr := toHTTPError(err)
	if terr.StatusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err.Error(), "request_id", RequestID(ctx))
	}

	terr = sanitizeError(terr, errLvl)
	resp.SetStatusCode(terr.StatusCode)
	resp.SetError(terr)

	return true
}
