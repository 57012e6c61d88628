// Package common defines shared constants, sentinel errors and small helpers
// used across the sign-out console, its services and repositories. Callers
// should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input validation errors.
	ErrorValidation = errors.New("validation error")

	// Configuration errors.
	ErrorUnknownBackend = errors.New("unknown backend")
)
