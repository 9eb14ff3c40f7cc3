// Package apperror defines the error taxonomy shared by the data-access,
// service and HTTP layers.
//
// Lower layers return an *AppError wrapping one of the sentinels below; the
// HTTP layer is the only place that turns a sentinel into a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error (upstream failures), never shown to clients
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and, when present, the cause, so
// errors.Is works against either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return NotFoundBy(resource, "id", id)
}

// NotFoundBy is NotFound for resources keyed by something other than an id,
// e.g. NotFoundBy("user", "username", "alice").
func NotFoundBy(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s %s", resource, key, value),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation on user-supplied input. It is a
// validation failure (400), not a conflict: the client chose the value.
func Duplicate(field, value string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("Duplicate %s: %s", field, value),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means the caller's identity is missing or could not be
// proven (bad credentials, unknown user behind a token). Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream wraps a failed call to a third-party service.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
		Cause:   cause,
	}
}
