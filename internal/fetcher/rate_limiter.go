package fetcher

import (
	"context"
	"time"
)

// RateLimiter paces sequential probes against the tracker API
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// probeLimiter enforces a minimum delay between probes. The fetch pass is
// strictly sequential, so a single lastCall timestamp is enough.
type probeLimiter struct {
	minDelay time.Duration
	lastCall time.Time
}

// NewRateLimiter creates a rate limiter with the default probe delay
func NewRateLimiter() RateLimiter {
	return &probeLimiter{
		minDelay: 100 * time.Millisecond,
	}
}

// Wait blocks until the minimum delay since the previous probe has passed
func (r *probeLimiter) Wait(ctx context.Context) error {
	if !r.lastCall.IsZero() {
		elapsed := time.Since(r.lastCall)
		if elapsed < r.minDelay {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.minDelay - elapsed):
			}
		}
	}
	r.lastCall = time.Now()
	return nil
}
