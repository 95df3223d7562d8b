package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverRateLimiter uses the primary limiter until it errors, then serves
// from the fallback and retries the primary once per recovery interval.
type FailoverRateLimiter struct {
	primary  domain.RateLimitRepository
	fallback domain.RateLimitRepository
	logger   *zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	isDown    bool
	lastCheck time.Time
}

func NewFailoverRateLimiter(primary, fallback domain.RateLimitRepository, logger *zerolog.Logger) *FailoverRateLimiter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverRateLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

// Down reports whether calls are currently served by the fallback.
func (r *FailoverRateLimiter) Down() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDown
}

func (r *FailoverRateLimiter) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.isDown || r.now().Sub(r.lastCheck) > recoveryInterval
}

func (r *FailoverRateLimiter) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isDown {
		r.logger.Info().Msg("primary rate limiter recovered")
	}
	r.isDown = false
}

func (r *FailoverRateLimiter) markDown(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isDown {
		r.logger.Error().Err(err).Msg("primary rate limiter failed, falling back to memory")
	}
	r.isDown = true
	r.lastCheck = r.now()
}
