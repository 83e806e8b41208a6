package model

import "errors"

// Domain error categories. Operations wrap these with %w so callers and HTTP
// handlers can classify failures with errors.Is without parsing messages.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a referenced item or user that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a state transition that lost to a concurrent mutation.
	ErrConflict = errors.New("conflict")
)
