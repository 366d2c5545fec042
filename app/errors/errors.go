package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
)

// RuntimeError is an error returned by CLI commands, with an optional hint
// that tells the user how to resolve it.
type RuntimeError struct {
	Msg   string
	Cause error
	Hint  string
}

// NewRuntimeError returns a new RuntimeError.
func NewRuntimeError(msg string, cause error, hint string) *RuntimeError {
	return &RuntimeError{Msg: msg, Cause: cause, Hint: hint}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// PermissionError is returned when a caller isn't allowed to perform an action
// on a target.
type PermissionError struct {
	User   string
	Action string
	Target string
}

// Error implements the error interface.
func (e PermissionError) Error() string {
	return fmt.Sprintf("user '%s' is not allowed to %s %s", e.User, e.Action, e.Target)
}

// Log logs an error using the default slog logger, extracting metadata if it's
// a StructuredError.
func Log(err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		slog.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	slog.Error(serr.Error(), args...)
}

// Errorf writes a user-facing representation of err to stderr, including the
// hint of a RuntimeError, and logs structured errors.
func Errorf(err error) {
	errorf(os.Stderr, err)
}

func errorf(w io.Writer, err error) {
	var serr *StructuredError
	if errors.As(err, &serr) {
		Log(err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err)

	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", rerr.Hint)
	}
}
