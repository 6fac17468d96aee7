package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// searchQuota is the authenticated search API limit (30/minute).
	searchQuota = 30

	// proactiveRate throttles just under the quota (~0.5 req/sec).
	proactiveRate = 0.5

	// minRemaining is the floor below which the limiter waits for the
	// reported reset instead of spending the last requests.
	minRemaining = 2
)

// rateLimiter implements dual-strategy rate limiting for the search API:
// a token bucket throttles proactively, and quota headers echoed in
// responses gate reactively.
type rateLimiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	remaining int
	resetAt   time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		bucket:    rate.NewLimiter(rate.Limit(proactiveRate), 1),
		remaining: searchQuota,
	}
}

// wait blocks until it is safe to make a request.
func (r *rateLimiter) wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, resetAt := r.remaining, r.resetAt
	r.mu.Unlock()

	if remaining < minRemaining && time.Now().Before(resetAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetAt)):
		}
	}
	return nil
}

// update records the quota state reported by a response.
func (r *rateLimiter) update(resp *gh.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = resp.Rate.Remaining
	r.resetAt = resp.Rate.Reset.Time
}
