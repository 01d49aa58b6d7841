package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionErrorUnwrap(t *testing.T) {
	cause := errors.New("429 insufficient_quota")
	err := NewCompletionError("gpt-3.5-turbo", "suggest", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "gpt-3.5-turbo")
	assert.Contains(t, err.Error(), "suggest")
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolve selection: %w", ErrNoSession)
	assert.ErrorIs(t, wrapped, ErrNoSession)
	assert.NotErrorIs(t, wrapped, ErrQuotaExceeded)
}

func TestCompletionErrorAsTarget(t *testing.T) {
	err := fmt.Errorf("handle message: %w", NewCompletionError("gpt-3.5-turbo", "detail", errors.New("timeout")))

	var ce *CompletionError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "detail", ce.Kind)
}
