// Package apperr defines the error taxonomy shared by services and
// repositories. HTTP handlers map these to status codes at the boundary;
// nothing else inspects error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a lookup for an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized marks missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable marks an unreachable or unconfigured backing store.
	ErrUnavailable = errors.New("service unavailable")
	// ErrForbidden marks an authenticated caller lacking permission.
	ErrForbidden = errors.New("forbidden")
)

// Validationf wraps ErrValidation with a caller-facing detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// StatusCode maps an error to its HTTP status. Unrecognized errors are
// internal: the handler logs the detail and the client sees a generic 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
