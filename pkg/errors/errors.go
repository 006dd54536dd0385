// Package errors provides structured errors for the persistence boundary and
// their mapping onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of a failure.
type ErrorType string

const (
	// TypeValidation marks rejected input or a rejected matrix (HTTP 422).
	TypeValidation ErrorType = "validation"
	// TypeParse marks a malformed document or body (HTTP 400).
	TypeParse ErrorType = "parse"
	// TypeNotFound marks a missing matrix document (HTTP 404).
	TypeNotFound ErrorType = "not_found"
	// TypeIO marks transport or storage failures (HTTP 502).
	TypeIO ErrorType = "io"
	// TypeInternal marks everything else (HTTP 500).
	TypeInternal ErrorType = "internal"
)

// Error is a structured error with a type, message and optional context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusUnprocessableEntity
	case TypeParse:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeIO:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError creates a validation error.
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message, Context: make(map[string]any)}
}

// ParseError creates a parse error.
func ParseError(message string, cause error) *Error {
	return &Error{Type: TypeParse, Message: message, Cause: cause, Context: make(map[string]any)}
}

// NotFoundError creates a not-found error.
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message, Context: make(map[string]any)}
}

// IOError creates an I/O error.
func IOError(message string, cause error) *Error {
	return &Error{Type: TypeIO, Message: message, Cause: cause, Context: make(map[string]any)}
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithField adds a context field (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts e for JSON serialisation.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// FromResponse rebuilds an error from a decoded response body.
func FromResponse(resp ErrorResponse) *Error {
	t := resp.Type
	if t == "" {
		t = TypeInternal
	}
	return &Error{Type: t, Message: resp.Error, Context: resp.Context}
}

// AsStructuredError converts any error into an *Error, wrapping unknown
// errors as internal.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}
	return InternalError("internal server error", err)
}

// Is reports whether err carries the given type.
func Is(err error, t ErrorType) bool {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Type == t
	}
	return false
}
