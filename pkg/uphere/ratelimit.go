package uphere

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestsPerSecond is the free-tier ceiling of the upstream API.
const DefaultRequestsPerSecond = 1.0

// RateLimiter enforces a minimum interval between granted acquisitions.
//
// Unlike a token bucket there is no burst allowance: two consecutive
// Acquire calls are always separated by at least 1/rate seconds, which is
// exactly the pacing contract the upstream free tier documents. The
// check-then-stamp sequence runs under a mutex so concurrent callers
// cannot both observe "interval elapsed" and fire together.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	clock    Clock
}

// NewRateLimiter creates a limiter allowing rps requests per second.
func NewRateLimiter(rps float64) (*RateLimiter, error) {
	return newRateLimiter(rps, systemClock{})
}

func newRateLimiter(rps float64, clock Clock) (*RateLimiter, error) {
	r := &RateLimiter{clock: clock}
	if err := r.SetRate(rps); err != nil {
		return nil, err
	}
	return r, nil
}

// Acquire blocks until at least the configured interval has elapsed since
// the previous granted acquisition, then stamps the grant time. The first
// acquisition is granted immediately. Returns ctx.Err() when the wait is
// aborted by cancellation; no grant is recorded in that case.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.clock.Now()
		wait := r.interval - now.Sub(r.last)
		if r.last.IsZero() || wait <= 0 {
			r.last = now
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		// Sleep outside the lock so TimeUntilNext and SetRate stay
		// responsive, then re-check: another caller may have stamped
		// a grant in the meantime.
		if err := r.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// SetRate updates the interval to 1/rps. Takes effect on the next
// acquisition, never retroactively.
func (r *RateLimiter) SetRate(rps float64) error {
	if rps <= 0 {
		return New(ErrCodeInvalidInput, "requests per second must be greater than 0, got %g", rps)
	}
	r.mu.Lock()
	r.interval = time.Duration(float64(time.Second) / rps)
	r.mu.Unlock()
	return nil
}

// Rate returns the configured rate in requests per second.
func (r *RateLimiter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(time.Second) / float64(r.interval)
}

// TimeUntilNext returns the remaining wait before the next acquisition
// would be granted, without blocking. Zero means a request can fire now.
func (r *RateLimiter) TimeUntilNext() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last.IsZero() {
		return 0
	}
	wait := r.interval - r.clock.Now().Sub(r.last)
	if wait < 0 {
		return 0
	}
	return wait
}
