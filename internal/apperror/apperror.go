package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("Validation Error")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstream       = errors.New("upstream unavailable")
	ErrUpstreamSchema = errors.New("upstream schema mismatch")
	ErrNoPage         = errors.New("no such page")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
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

// Unauthorized returns an AppError indicating the caller has no valid
// identity. Login rejections use this with a deliberately opaque message, so
// "unknown username" and "wrong password" are indistinguishable to the caller.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream returns an AppError for a catalog API call that failed at the
// transport level or came back with a non-2xx status.
func Upstream(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("catalog API unavailable during %s: %v", op, cause),
	}
}

// UpstreamSchema returns an AppError for a catalog API response whose body
// does not carry the expected results/next/previous envelope.
func UpstreamSchema(op string) *AppError {
	return &AppError{
		Err:     ErrUpstreamSchema,
		Message: fmt.Sprintf("catalog API returned an unexpected body during %s", op),
	}
}

// NoPage returns an AppError for a next/previous navigation that has no
// stored cursor. Handlers treat it as a no-op redirect, never a failure page.
func NoPage(direction string) *AppError {
	return &AppError{
		Err:     ErrNoPage,
		Message: fmt.Sprintf("no %s page available", direction),
	}
}
