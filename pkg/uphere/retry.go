package uphere

import "time"

const (
	// defaultMaxRetries bounds how many times a 429 response is retried
	// before the request fails with RateLimitExhaustedError.
	defaultMaxRetries = 3

	// defaultBackoffUnit is the base wait; retry n waits n * unit,
	// giving the documented 1s, 2s, 3s schedule.
	defaultBackoffUnit = time.Second
)

// retrySchedule is the backoff state machine for rate-limit retries.
// It tracks retries consumed and total time waited, and is deliberately
// decoupled from the HTTP loop so the schedule can be tested on its own.
//
// State progression: each Next call either yields the wait for the next
// retry (1s, 2s, 3s with the defaults) or reports exhaustion. Backoff
// waits stack with normal limiter pacing; they never replace it.
type retrySchedule struct {
	retries int
	max     int
	unit    time.Duration
	waited  time.Duration
}

func newRetrySchedule(max int, unit time.Duration) *retrySchedule {
	if max < 0 {
		max = 0
	}
	if unit <= 0 {
		unit = defaultBackoffUnit
	}
	return &retrySchedule{max: max, unit: unit}
}

// Next consumes one retry and returns the wait to apply before it.
// ok is false once the schedule is exhausted; the caller must then stop.
func (s *retrySchedule) Next() (wait time.Duration, ok bool) {
	if s.retries >= s.max {
		return 0, false
	}
	s.retries++
	wait = time.Duration(s.retries) * s.unit
	s.waited += wait
	return wait, true
}

// Attempts reports the total HTTP attempts implied by the schedule state:
// the initial request plus every retry consumed so far.
func (s *retrySchedule) Attempts() int { return s.retries + 1 }

// Waited reports the total backoff time handed out so far.
func (s *retrySchedule) Waited() time.Duration { return s.waited }
