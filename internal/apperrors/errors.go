// Package apperrors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNoSession indicates the user has no pending suggestion session,
	// or the reply did not resolve to a stored candidate.
	ErrNoSession = errors.New("no pending session")

	// ErrEmptySuggestions indicates the completion response yielded zero
	// usable candidates after parsing.
	ErrEmptySuggestions = errors.New("no usable suggestions")

	// ErrQuotaExceeded indicates the user reached the daily usage quota.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// CompletionError represents a failed call to the completion service.
// The upstream detail is kept for logging and must never be forwarded
// to the end user.
type CompletionError struct {
	Model string
	Kind  string // "suggest" or "detail"
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (model=%s, kind=%s): %v", e.Model, e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// NewCompletionError creates a new completion error.
func NewCompletionError(model, kind string, err error) *CompletionError {
	return &CompletionError{
		Model: model,
		Kind:  kind,
		Err:   err,
	}
}
