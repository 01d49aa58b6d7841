// Package quota enforces the per-user daily cap on fulfilled suggestion
// requests. Counts live in process memory only and restart from zero with
// the process; that is a documented limitation, not persistence worth adding.
package quota

import (
	"sync"
	"time"

	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
)

// Config configures a Tracker instance.
type Config struct {
	// Limit is the number of fulfilled requests allowed per calendar day.
	// Zero or negative disables enforcement.
	Limit int

	// Location decides when the calendar day rolls over.
	// Defaults to time.Local.
	Location *time.Location

	// CleanupPeriod is how often stale-day records are swept.
	// Defaults to one hour.
	CleanupPeriod time.Duration

	// Optional metrics reporter for rejections.
	Metrics *metrics.Metrics
}

type usageRecord struct {
	date  string // calendar day the count belongs to, "2006-01-02"
	count int
}

// Tracker counts fulfilled requests per user per calendar day. The count
// resets lazily the first time a user is seen on a new day.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*usageRecord
	config  Config
	stopCh  chan struct{}

	now func() time.Time // test hook
}

// NewTracker creates a quota tracker.
func NewTracker(cfg Config) *Tracker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = time.Hour
	}

	t := &Tracker{
		records: make(map[string]*usageRecord),
		config:  cfg,
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go t.cleanupLoop()

	return t
}

// Allow counts one request for the user when it fits today's cap, returning
// apperrors.ErrQuotaExceeded once the cap is reached. Check and increment are
// one atomic step so concurrent messages from the same user cannot
// oversubscribe the cap.
func (t *Tracker) Allow(userID string) error {
	if t.config.Limit <= 0 {
		return nil
	}

	t.mu.Lock()
	today := t.today()
	rec, ok := t.records[userID]
	if !ok || rec.date != today {
		rec = &usageRecord{date: today}
		t.records[userID] = rec
	}

	if rec.count >= t.config.Limit {
		t.mu.Unlock()
		if t.config.Metrics != nil {
			t.config.Metrics.RecordQuotaRejection()
		}
		return apperrors.ErrQuotaExceeded
	}

	rec.count++
	t.mu.Unlock()
	return nil
}

// Remaining returns how many requests the user has left today.
// Returns -1 when enforcement is disabled.
func (t *Tracker) Remaining(userID string) int {
	if t.config.Limit <= 0 {
		return -1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.today()
	rec, ok := t.records[userID]
	if !ok || rec.date != today {
		return t.config.Limit
	}
	return t.config.Limit - rec.count
}

// today formats the current calendar day. Callers hold t.mu, which also
// covers the test hook.
func (t *Tracker) today() string {
	return t.now().In(t.config.Location).Format("2006-01-02")
}

// setNow swaps the clock for tests.
func (t *Tracker) setNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// cleanupLoop periodically drops records from previous days.
func (t *Tracker) cleanupLoop() {
	ticker := time.NewTicker(t.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			today := t.today()
			for userID, rec := range t.records {
				if rec.date != today {
					delete(t.records, userID)
				}
			}
			t.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (t *Tracker) Close() error {
	select {
	case <-t.stopCh:
		// Already stopped
	default:
		close(t.stopCh)
	}
	return nil
}
