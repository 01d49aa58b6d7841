package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
)

func testSet() recipe.SuggestionSet {
	return recipe.SuggestionSet{
		Candidates: []recipe.Candidate{
			{Title: "冷やし中華", Reason: "さっぱりしていて暑い日にぴったりです。"},
			{Title: "そうめん", Reason: "つるっと食べられます。"},
			{Title: "冷製パスタ", Reason: "トマトの酸味が爽やかです。"},
		},
		Summary: "全体的にさっぱりした冷たい料理を提案しました。",
	}
}

// runStoreContract exercises behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("GetWithoutSession", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, "user-1")
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))

		got, err := store.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, testSet(), got)

		// Get does not consume.
		_, err = store.Get(ctx, "user-1")
		assert.NoError(t, err)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))

		replacement := recipe.SuggestionSet{
			Candidates: []recipe.Candidate{{Title: "カレーライス"}},
		}
		require.NoError(t, store.Put(ctx, "user-1", replacement))

		got, err := store.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, replacement, got)
	})

	t.Run("ResolveConsumes", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))

		cand, err := store.Resolve(ctx, "user-1", 2)
		require.NoError(t, err)
		assert.Equal(t, "そうめん", cand.Title)

		_, err = store.Resolve(ctx, "user-1", 2)
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})

	t.Run("ResolveOutOfRangeKeepsSession", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))

		_, err := store.Resolve(ctx, "user-1", 4)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = store.Resolve(ctx, "user-1", 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		// The session survived the bad picks.
		cand, err := store.Resolve(ctx, "user-1", 1)
		require.NoError(t, err)
		assert.Equal(t, "冷やし中華", cand.Title)
	})

	t.Run("ResolveWithoutSession", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Resolve(ctx, "user-1", 1)
		assert.ErrorIs(t, err, apperrors.ErrNoSession)
	})

	t.Run("ClearDropsSession", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))
		require.NoError(t, store.Clear(ctx, "user-1"))

		_, err := store.Get(ctx, "user-1")
		assert.ErrorIs(t, err, apperrors.ErrNoSession)

		// Clearing an absent session is fine.
		assert.NoError(t, store.Clear(ctx, "user-1"))
	})

	t.Run("UsersAreIndependent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))
		require.NoError(t, store.Put(ctx, "user-2", testSet()))

		_, err := store.Resolve(ctx, "user-1", 1)
		require.NoError(t, err)

		_, err = store.Get(ctx, "user-2")
		assert.NoError(t, err)
	})

	t.Run("ConcurrentResolveSingleWinner", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "user-1", testSet()))

		const attempts = 8
		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Resolve(ctx, "user-1", 1)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins int
		for err := range results {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, apperrors.ErrNoSession)
			}
		}
		assert.Equal(t, 1, wins)
	})
}
