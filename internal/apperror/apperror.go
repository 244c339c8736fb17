// Package apperror defines the failure taxonomy every public operation
// normalizes to before an error reaches the HTTP layer. Internal helpers
// propagate plain wrapped errors; the orchestrator and query service map
// them onto these kinds at their boundary, keeping the original cause
// attached for diagnostics.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrUpstream        = errors.New("media host error")
	ErrTransfer        = errors.New("transfer failed")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrNotFound        = errors.New("not found")
	ErrStore           = errors.New("store error")
)

type Error struct {
	Kind    error  // one of the sentinel errors above
	Message string // human-readable, safe to surface
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return fmt.Errorf("%w: %w", e.Kind, e.Err)
	}
	return e.Kind
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) *Error {
	return newError(ErrValidation, message, nil)
}

func Unauthenticated() *Error {
	return newError(ErrUnauthenticated, "authentication required", nil)
}

func Forbidden(message string) *Error {
	return newError(ErrForbidden, message, nil)
}

func Upstream(message string, cause error) *Error {
	return newError(ErrUpstream, message, cause)
}

func Transfer(message string, cause error) *Error {
	return newError(ErrTransfer, message, cause)
}

func RateLimited(message string) *Error {
	return newError(ErrRateLimited, message, nil)
}

func NotFound(resource, id string) *Error {
	return newError(ErrNotFound, fmt.Sprintf("%s not found: %s", resource, id), nil)
}

func Store(message string, cause error) *Error {
	return newError(ErrStore, message, cause)
}

// Normalize returns err unchanged when it already carries a taxonomy kind,
// otherwise wraps it as a store-kind failure. Boundary code uses this so a
// raw database or IO error never escapes untyped.
func Normalize(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Store(message, err)
}
