package agent

import (
	"sync"
	"time"
)

// CircuitBreaker opens after a number of consecutive failures and fail-fasts
// until the cool-off period elapses. A single success closes it again.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	coolOff   time.Duration
	failures  int
	openedAt  time.Time
	probing   bool
	now       func() time.Time
}

// NewCircuitBreaker builds a breaker with the given failure threshold and
// cool-off period.
func NewCircuitBreaker(threshold int, coolOff time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		coolOff:   coolOff,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. When the cool-off has elapsed the
// breaker lets exactly one probe through (half-open); other callers keep
// failing fast until that probe's outcome is recorded.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.failures < cb.threshold {
		return true
	}
	if cb.probing {
		return false
	}
	if cb.now().Sub(cb.openedAt) >= cb.coolOff {
		cb.probing = true
		return true
	}
	return false
}

// Success records a successful call and closes the breaker.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.probing = false
}

// Failure records a failed call, opening the breaker at the threshold. A
// failed half-open probe re-opens it for a fresh cool-off.
func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	cb.failures++
	if cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
	}
}
