package handler

import "context"

type contextKey string

const (
	contextKeyRequestID    contextKey = "request_id"
	contextKeyResponseData contextKey = "response_data"
)

// RequestID returns the ID assigned to the request during authentication, or
// an empty string if it wasn't set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

func getResponseData(ctx context.Context) []byte {
	if v := ctx.Value(contextKeyResponseData); v != nil {
		return v.([]byte) //nolint:errcheck,forcetypeassert // Acceptable risk; only set with constant key.
	}
	return []byte{}
}

func setResponseData(ctx context.Context, data []byte) context.Context {
	return context.WithValue(ctx, contextKeyResponseData, data)
}
