package worker

import (
	"math"
	"time"
)

// RetryPolicy shapes the polling cadence. Reviews take staff minutes to
// hours, so the first check waits a while and later checks stretch out
// toward MaxDelay.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// withDefaults fills zero fields with the verification polling defaults.
func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = 30
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Minute
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = 10 * time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 1.5
	}
	return r
}

// NextDelay returns the wait before the given attempt (1-based), growing
// geometrically and clamped to MaxDelay. Assumes a policy normalized by
// withDefaults.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if delay <= 0 {
		delay = r.InitialDelay
	}
	return delay
}
