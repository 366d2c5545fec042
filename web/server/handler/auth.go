package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/crudkit/authz"
	"go.hackfix.me/crudkit/web/server/types"
)

// Authenticator validates a request and returns an updated context or an error.
// If authentication is successful, a valid Caller will be set on the Request.
type Authenticator func(context.Context, types.Request) (context.Context, error)

// ProxyAuth creates an authenticator that trusts the user name set in the
// given header by a reverse proxy in front of the server. The user must exist
// in users, which maps user names to role names.
//
// Each authenticated request is assigned a unique ID, which is exposed to the
// service handlers as the "request_id" caller field.
func ProxyAuth(header string, users map[string][]string) Authenticator {
	return func(ctx context.Context, req types.Request) (context.Context, error) {
		userName := strings.TrimSpace(req.GetHTTPRequest().Header.Get(header))
		if userName == "" {
			return ctx, types.NewError(http.StatusUnauthorized, "missing user header")
		}

		roleNames, ok := users[userName]
		if !ok {
			return ctx, types.NewError(http.StatusUnauthorized, "unknown user")
		}

		caller, err := authz.NewCaller(userName, roleNames...)
		if err != nil {
			return ctx, types.NewError(http.StatusInternalServerError, err.Error())
		}

		reqID := cuid2.Generate()
		caller.Extra["request_id"] = reqID
		req.SetCaller(caller)

		return setRequestID(ctx, reqID), nil
	}
}
