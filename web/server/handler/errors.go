package handler

import (
	"errors"
	"net/http"
	"strings"

	aerrors "go.hackfix.me/crudkit/app/errors"
	dbtypes "go.hackfix.me/crudkit/db/types"
	"go.hackfix.me/crudkit/web/server/types"
)

// toHTTPError returns the HTTP error equivalent of err. Errors of the service
// handlers are mapped to their status codes, and any other error is an
// internal server error.
func toHTTPError(err error) *types.Error {
	var terr *types.Error
	if errors.As(err, &terr) && terr != nil {
		out := *terr
		if out.StatusCode == 0 {
			out.StatusCode = http.StatusInternalServerError
		}
		return &out
	}

	var (
		errNoRes   dbtypes.NoResultError
		errInput   dbtypes.InvalidInputError
		errDup     dbtypes.DuplicateError
		errPerm    aerrors.PermissionError
		statusCode = http.StatusInternalServerError
	)
	switch {
	case errors.As(err, &errNoRes):
		statusCode = http.StatusNotFound
	case errors.As(err, &errInput):
		statusCode = http.StatusBadRequest
	case errors.As(err, &errPerm):
		statusCode = http.StatusForbidden
	case errors.As(err, &errDup):
		statusCode = http.StatusConflict
	}

	return types.NewError(statusCode, err.Error())
}

// sanitizeError returns a copy of terr with the message reduced to the given
// error level. The status code is never changed.
func sanitizeError(terr *types.Error, lvl types.ErrorLevel) *types.Error {
	out := *terr
	switch lvl {
	case types.ErrorLevelNone:
		out.Message = http.StatusText(out.StatusCode)
	case types.ErrorLevelMinimal:
		out.Message, _, _ = strings.Cut(out.Message, ": ")
	case types.ErrorLevelFull:
	}

	return &out
}
