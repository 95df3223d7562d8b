package api

import (
	"sync"

	"shareit/internal/config"

	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client key. It is shared by the
// HTTP middleware and the gRPC interceptor.
type rateLimiter struct {
	limiters sync.Map
	cfg      *config.APIConfig
}

func newRateLimiter(cfg *config.APIConfig) *rateLimiter {
	return &rateLimiter{
		cfg: cfg,
	}
}

// allow reports whether key may proceed; a non-positive RPS disables limiting.
func (l *rateLimiter) allow(key string) bool {
	if l.cfg.RateLimit.RPS <= 0 {
		return true
	}
	return l.getLimiter(key).Allow()
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RateLimit.RPS), burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}
