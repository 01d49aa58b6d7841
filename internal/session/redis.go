package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
)

// maxResolveRetries bounds optimistic-lock retries when a concurrent write
// touches the same user's key mid-transaction.
const maxResolveRetries = 3

// RedisStore is the Redis-backed Store. Entries are JSON payloads with a
// server-side TTL, so expiry survives process restarts and works across
// replicas. The consuming read runs under WATCH so only one of two racing
// picks from the same user wins.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures a RedisStore instance.
type RedisConfig struct {
	// Prefix namespaces keys, default "session".
	Prefix string

	// TTL is how long a pending set stays resolvable. Zero disables expiry.
	TTL time.Duration
}

// NewRedisStore creates a session store on an existing Redis client.
// The client's lifecycle stays with the caller.
func NewRedisStore(client *redis.Client, cfg RedisConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "session"
	}
	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (rs *RedisStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, userID)
}

// Put stores the set for the user, replacing any pending one.
func (rs *RedisStore) Put(ctx context.Context, userID string, set recipe.SuggestionSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return rs.client.Set(ctx, rs.key(userID), payload, rs.ttl).Err()
}

// Get returns the pending set without consuming it.
func (rs *RedisStore) Get(ctx context.Context, userID string) (recipe.SuggestionSet, error) {
	raw, err := rs.client.Get(ctx, rs.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return recipe.SuggestionSet{}, apperrors.ErrNoSession
	}
	if err != nil {
		return recipe.SuggestionSet{}, fmt.Errorf("get session: %w", err)
	}

	var set recipe.SuggestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return recipe.SuggestionSet{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return set, nil
}

// Resolve consumes the pending set when the pick is in range. The read,
// range check, and delete run as one optimistic transaction.
func (rs *RedisStore) Resolve(ctx context.Context, userID string, pick int) (recipe.Candidate, error) {
	key := rs.key(userID)
	var cand recipe.Candidate

	resolve := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNoSession
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		var set recipe.SuggestionSet
		if err := json.Unmarshal(raw, &set); err != nil {
			// Unreadable payload; drop it so the user is not stuck.
			_, _ = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return apperrors.ErrNoSession
		}

		c, ok := set.At(pick - 1)
		if !ok {
			return apperrors.ErrInvalidInput
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return fmt.Errorf("consume session: %w", err)
		}

		cand = c
		return nil
	}

	for range maxResolveRetries {
		err := rs.client.Watch(ctx, resolve, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return recipe.Candidate{}, err
		}
		return cand, nil
	}

	// The key kept changing under us; the freshest write wins anyway.
	return recipe.Candidate{}, apperrors.ErrNoSession
}

// Clear drops the pending set, if any.
func (rs *RedisStore) Clear(ctx context.Context, userID string) error {
	return rs.client.Del(ctx, rs.key(userID)).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (rs *RedisStore) Close() error {
	return nil
}

var _ Store = (*RedisStore)(nil)
