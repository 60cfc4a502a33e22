package domain

import "errors"

var (
	// ErrValidation marks malformed input rejected before any state change.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups on identifiers that have no record.
	ErrNotFound = errors.New("notification not found")
	// ErrConflict marks attempts to move a record out of a terminal state.
	ErrConflict = errors.New("notification already in terminal state")
)
