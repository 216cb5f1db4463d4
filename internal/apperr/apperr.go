// Package apperr defines the error taxonomy shared by services and handlers.
// Callers classify with errors.Is and add context with fmt.Errorf("...: %w").
package apperr

import "errors"

var (
	// ErrUnauthenticated: no credential or an invalid one. Handlers must not
	// distinguish missing from malformed.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden: authenticated but wrong role or not the resource owner.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: missing or malformed required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState: operation not legal in the entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict: uniqueness violation.
	ErrConflict = errors.New("conflict")
)

// Code returns a stable machine-readable code for the error, used as the
// "error" field of JSON responses. Unclassified errors report as internal.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "internal"
}
