package notion

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Notion allows an average of 3 requests per second.
// See: https://developers.notion.com/reference/request-limits
const (
	requestsPerSecond = 3.0
	burstSize         = 10
	// defaultBackoff applies when a 429 carries no Retry-After header.
	defaultBackoff = 60 * time.Second
)

// rateLimiter is a token bucket shared by all API calls, with a backoff
// window set whenever the API answers 429.
type rateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

// wait blocks until a request may be sent, honouring both the token
// bucket and any active backoff window.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// recordRateLimit opens a backoff window after a 429 response. The
// retryAfter value comes from the Retry-After header when present.
func (r *rateLimiter) recordRateLimit(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.retryAt = time.Now().Add(retryAfter)
}
