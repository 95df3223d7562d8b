package worker

import (
	"math"
	"time"
)

// RetryPolicy is exponential backoff for failed outbox deliveries.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Exhausted reports whether attempt (1-based) is the last one allowed.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return r.MaxRetries > 0 && attempt >= r.MaxRetries
}

// NextDelay returns the wait before attempt+1, clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && (d > r.MaxDelay || d <= 0) {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
