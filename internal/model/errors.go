package model

import "errors"

// Domain-level sentinel errors. Callers wrap them with context and
// match with errors.Is.
var (
	// ErrNotFound covers both missing sessions and sessions owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation does not fit the session lifecycle.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the caller has no valid identity.
	ErrUnauthorized = errors.New("unauthorized")
)
