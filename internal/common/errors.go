// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrValidation marks malformed or empty required input, rejected before
	// any computation runs.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown ID on a lookup-by-id operation.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry marks a uniqueness violation in storage.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a specific malformed field.
func ValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// NotFoundError reports an unknown entity ID.
func NotFoundError(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
}

// UserError represents an error that should be shown to the user. The wrapped
// error carries internal detail for logs; UserMessage is the only part safe
// to surface.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage extracts the user-safe message from an error chain, falling
// back to a generic retry prompt so internal rule names never leak.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return "analysis unavailable, please retry"
}
