package types

import (
	"fmt"
	"strings"
)

// Error represents an HTTP error with status code and message.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

// Error returns the error message string.
func (e Error) Error() string {
	return e.Message
}

// NewError creates a new Error with the specified status code and message.
func NewError(statusCode int, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrorLevel is the amount of detail of error messages returned to clients.
type ErrorLevel string

// Valid error levels.
const (
	// ErrorLevelNone hides all error messages.
	ErrorLevelNone ErrorLevel = "none"
	// ErrorLevelMinimal keeps only the first part of error messages, which
	// omits causes that might leak internal details.
	ErrorLevelMinimal ErrorLevel = "minimal"
	// ErrorLevelFull keeps error messages intact.
	ErrorLevelFull ErrorLevel = "full"
)

// ErrorLevelFromString returns the ErrorLevel with the given name.
func ErrorLevelFromString(s string) (ErrorLevel, error) {
	switch lvl := ErrorLevel(strings.ToLower(s)); lvl {
	case ErrorLevelNone, ErrorLevelMinimal, ErrorLevelFull:
		return lvl, nil
	}
	return "", fmt.Errorf("invalid error level '%s'", s)
}
