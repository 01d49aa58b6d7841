// Package session tracks the pending suggestion set per user: stored when a
// suggestion request completes, consumed exactly once by a later numeric pick.
package session

import (
	"context"

	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
)

// Store holds at most one pending SuggestionSet per user.
//
// Put overwrites any existing entry for the user: the latest suggestion
// request always wins. Resolve is the only consuming read — a valid in-range
// pick removes the entry atomically, so two concurrent picks from the same
// user cannot both succeed.
type Store interface {
	// Put stores the set for the user, replacing any pending one.
	Put(ctx context.Context, userID string, set recipe.SuggestionSet) error

	// Get returns the pending set without consuming it.
	// Returns apperrors.ErrNoSession when none is pending.
	Get(ctx context.Context, userID string) (recipe.SuggestionSet, error)

	// Resolve consumes the pending set and returns the candidate at the
	// 1-based ordinal pick. Returns apperrors.ErrNoSession when no set is
	// pending, and apperrors.ErrInvalidInput when the pick is out of range;
	// in both cases nothing is consumed.
	Resolve(ctx context.Context, userID string, pick int) (recipe.Candidate, error)

	// Clear drops the pending set, if any.
	Clear(ctx context.Context, userID string) error

	// Close releases store resources. Safe to call multiple times.
	Close() error
}
