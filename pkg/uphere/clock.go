package uphere

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time so that rate limiting and retry backoff
// can be tested deterministically without real sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is cancelled, whichever comes first.
	// Returns ctx.Err() when the wait was aborted.
	Sleep(ctx context.Context, d time.Duration) error
}

// systemClock is the Clock used outside of tests.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
