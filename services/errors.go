package services

import (
	"errors"
)

// Error kinds surfaced to the HTTP layer. Services wrap these with context
// via fmt.Errorf("...: %w", ...); handlers classify with errors.Is and map
// NotFound→404, Validation→400, Conflict→409, anything else→500.
var (
	// ErrNotFound: an id the caller referenced does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrValidation: the request itself is malformed (zero amount, missing
	// field, deleting a default category, unknown category reference).
	ErrValidation = errors.New("validation failed")

	// ErrConflict: a concurrent-update race the storage layer could not
	// resolve. Transient; the caller may retry. Failed calls never leave
	// partial writes behind, so a retry cannot double-apply.
	ErrConflict = errors.New("conflict")
)
