package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"    // 정상 작동
	CircuitStateOpen     CircuitState = "OPEN"      // 요청 차단
	CircuitStateHalfOpen CircuitState = "HALF_OPEN" // 시험 요청 1건 허용
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker fails fast after consecutive failures and lets a single
// probe through once the reset timeout has elapsed.
type CircuitBreaker struct {
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	nextRetryTime    time.Time
	probeInFlight    bool
	now              func() time.Time
	logger           *zap.Logger
	mu               sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// SetClock replaces the time source. Used by tests.
func (cb *CircuitBreaker) SetClock(now func() time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.now = now
}

// Allow reports whether a request may proceed. In HALF_OPEN only one probe
// is admitted until it records a result.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateOpen:
		if cb.now().Before(cb.nextRetryTime) {
			return false
		}
		cb.transitionTo(CircuitStateHalfOpen)
		cb.probeInFlight = true
		return true
	case CircuitStateHalfOpen:
		if cb.probeInFlight {
			return false
		}
		cb.probeInFlight = true
		return true
	default:
		return true
	}
}

// RecordSuccess records a successful request
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probeInFlight = false
	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: Service recovered, transitioning to CLOSED")
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

// RecordFailure records a failed request
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probeInFlight = false
	cb.failureCount++

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.nextRetryTime = cb.now().Add(cb.resetTimeout)
		if cb.state != CircuitStateOpen {
			cb.logger.Warn("Circuit Breaker: OPENING circuit",
				zap.Int("failure_count", cb.failureCount),
				zap.Int("threshold", cb.failureThreshold),
				zap.Duration("reset_timeout", cb.resetTimeout),
			)
		}
		cb.transitionTo(CircuitStateOpen)
	}
}

// RecordAbandoned releases a half-open probe that ended without a verdict,
// e.g. because the caller cancelled it.
func (cb *CircuitBreaker) RecordAbandoned() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probeInFlight = false
}

// RetryAfter returns how long the circuit stays open, zero when closed.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitStateOpen {
		return 0
	}
	if d := cb.nextRetryTime.Sub(cb.now()); d > 0 {
		return d
	}
	return 0
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	if cb.state == newState {
		return
	}
	oldState := cb.state
	cb.state = newState
	if newState == CircuitStateClosed {
		cb.failureCount = 0
	}

	cb.logger.Debug("Circuit Breaker: State transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	)
}
