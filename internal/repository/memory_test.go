package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRateLimiter()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, _ := repo.CheckRateLimit(ctx, "a", 2, time.Minute)
	assert.True(t, allowed)
	allowed, _ = repo.CheckRateLimit(ctx, "a", 2, time.Minute)
	assert.True(t, allowed)
	allowed, _ = repo.CheckRateLimit(ctx, "a", 2, time.Minute)
	assert.False(t, allowed)

	allowed, _ = repo.CheckRateLimit(ctx, "b", 2, time.Minute)
	assert.True(t, allowed)

	now = now.Add(time.Minute)
	allowed, _ = repo.CheckRateLimit(ctx, "a", 2, time.Minute)
	assert.True(t, allowed, "a new window starts once the old one has expired")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, repo.Sweep())
}
