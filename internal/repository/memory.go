package repository

import (
	"context"
	"sync"
	"time"
)

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryRateLimiter is the single-process rate limiter used when Redis is
// not configured or unreachable.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

func (r *MemoryRateLimiter) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.entries[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// Sweep drops expired windows.
func (r *MemoryRateLimiter) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}
