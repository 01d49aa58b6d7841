package session

import (
	"context"
	"sync"
	"time"

	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
)

// MemoryConfig configures a MemoryStore instance.
type MemoryConfig struct {
	// TTL is how long a pending set stays resolvable. Zero disables expiry.
	TTL time.Duration

	// CleanupPeriod is how often expired entries are swept.
	// Defaults to the TTL when unset.
	CleanupPeriod time.Duration

	// Optional metrics reporter for the active session gauge.
	Metrics *metrics.Metrics
}

type memoryEntry struct {
	set       recipe.SuggestionSet
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is the in-process Store. Expiry is checked lazily on every
// read and a background sweep removes entries for users who never reply.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	config  MemoryConfig
	stopCh  chan struct{}
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = cfg.TTL
	}

	ms := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	if cfg.TTL > 0 {
		go ms.cleanupLoop()
	}

	return ms
}

// Put stores the set for the user, replacing any pending one.
func (ms *MemoryStore) Put(_ context.Context, userID string, set recipe.SuggestionSet) error {
	entry := &memoryEntry{set: set}
	if ms.config.TTL > 0 {
		entry.expiresAt = time.Now().Add(ms.config.TTL)
	}

	ms.mu.Lock()
	ms.entries[userID] = entry
	count := len(ms.entries)
	ms.mu.Unlock()

	ms.reportActive(count)
	return nil
}

// Get returns the pending set without consuming it.
func (ms *MemoryStore) Get(_ context.Context, userID string) (recipe.SuggestionSet, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, ok := ms.entries[userID]
	if !ok {
		return recipe.SuggestionSet{}, apperrors.ErrNoSession
	}
	if entry.expired(time.Now()) {
		delete(ms.entries, userID)
		return recipe.SuggestionSet{}, apperrors.ErrNoSession
	}

	return entry.set, nil
}

// Resolve consumes the pending set when the pick is in range.
func (ms *MemoryStore) Resolve(_ context.Context, userID string, pick int) (recipe.Candidate, error) {
	ms.mu.Lock()

	entry, ok := ms.entries[userID]
	if !ok {
		ms.mu.Unlock()
		return recipe.Candidate{}, apperrors.ErrNoSession
	}
	if entry.expired(time.Now()) {
		delete(ms.entries, userID)
		count := len(ms.entries)
		ms.mu.Unlock()
		ms.reportActive(count)
		return recipe.Candidate{}, apperrors.ErrNoSession
	}

	cand, ok := entry.set.At(pick - 1)
	if !ok {
		ms.mu.Unlock()
		return recipe.Candidate{}, apperrors.ErrInvalidInput
	}

	delete(ms.entries, userID)
	count := len(ms.entries)
	ms.mu.Unlock()

	ms.reportActive(count)
	return cand, nil
}

// Clear drops the pending set, if any.
func (ms *MemoryStore) Clear(_ context.Context, userID string) error {
	ms.mu.Lock()
	delete(ms.entries, userID)
	count := len(ms.entries)
	ms.mu.Unlock()

	ms.reportActive(count)
	return nil
}

// Close stops the background sweep. Safe to call multiple times.
func (ms *MemoryStore) Close() error {
	select {
	case <-ms.stopCh:
		// Already stopped
	default:
		close(ms.stopCh)
	}
	return nil
}

// cleanupLoop periodically removes sets whose users never replied.
func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(ms.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stopCh:
			return
		case <-ticker.C:
			now := time.Now()

			ms.mu.Lock()
			for userID, entry := range ms.entries {
				if entry.expired(now) {
					delete(ms.entries, userID)
					if ms.config.Metrics != nil {
						ms.config.Metrics.RecordSessionOutcome("expired")
					}
				}
			}
			count := len(ms.entries)
			ms.mu.Unlock()

			ms.reportActive(count)
		}
	}
}

func (ms *MemoryStore) reportActive(count int) {
	if ms.config.Metrics != nil {
		ms.config.Metrics.SetActiveSessions(count)
	}
}

var _ Store = (*MemoryStore)(nil)
