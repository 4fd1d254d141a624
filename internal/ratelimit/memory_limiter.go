package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter keeps sliding windows in process memory. It serves two
// roles: the only limiter when Redis is disabled (memory storage demo
// runs), and the degraded backend the adaptive limiter switches to
// during a Redis outage. State is per instance and lost on restart, so
// a restart also resets faucet cooldowns tracked here.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	log     *slog.Logger
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter constructs an empty in-process limiter.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		log:     log,
	}
}

// Check records a hit against the key's window and reports whether it
// fit the budget. ResetAt is when the oldest counted hit ages out, so
// a blocked faucet claim learns the real end of its cooldown.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := pruneBefore(m.windows[key], cutoff)

	allowed := len(hits) < limit
	if allowed {
		hits = append(hits, now)
	}
	m.windows[key] = hits

	remaining := limit - len(hits)
	if remaining < 0 {
		remaining = 0
	}

	oldest := now
	if len(hits) > 0 {
		oldest = hits[0]
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   oldest.Add(window),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

// Forget drops all recorded hits for a key.
func (m *MemoryLimiter) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.windows, key)
	m.mu.Unlock()

	return nil
}

// Cleanup removes keys whose newest hit is older than maxAge. maxAge
// must exceed the longest active window or live cooldowns get dropped.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, hits := range m.windows {
		if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
			delete(m.windows, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.Debug("pruned stale limiter keys", slog.Int("removed", removed))
	}
}

func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(hits) && hits[idx].Before(cutoff) {
		idx++
	}

	if idx == 0 {
		return hits
	}

	return append(hits[:0], hits[idx:]...)
}
