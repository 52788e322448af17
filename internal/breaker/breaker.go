// Package breaker wraps any adapter call with a circuit breaker, so a
// misbehaving collaborator (fleet reader, status writer, notifier,
// predictor, feedback sink) degrades to fast failures instead of hanging
// or retrying into the same fault.
//
// States:
//   - CLOSED   (normal)   → failures reach threshold  → OPEN
//     (each success while CLOSED takes one failure off the count)
//   - OPEN     (blocking) → after timeout             → HALF_OPEN
//   - HALF_OPEN (probing) → HalfOpenMax probes succeed → CLOSED,
//     any probe fails → OPEN
package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kmra/induction/internal/domain"
)

// State is the circuit breaker's current mode.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config tunes a breaker's tripping and recovery behavior.
type Config struct {
	FailureThreshold int           // failures to trip (default 5)
	ResetTimeout     time.Duration // time in OPEN before probing (default 30s)
	HalfOpenMax      int           // successful probes to close (default 3)
}

// DefaultConfig returns the standard production values.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, ResetTimeout: 30 * time.Second, HalfOpenMax: 3}
}

// CircuitBreaker is a thread-safe, per-adapter circuit breaker.
type CircuitBreaker struct {
	mu         sync.Mutex
	name       string
	config     Config
	state      State
	failures   int
	successes int // successes while HALF_OPEN
	trippedAt  time.Time
	totalTrips int
	now        func() time.Time // injectable clock for tests
}

// New constructs a breaker in the CLOSED state.
func New(name string, cfg Config) *CircuitBreaker {
	return &CircuitBreaker{name: name, config: cfg, state: Closed, now: time.Now}
}

// Allow reports whether a call should proceed, transitioning OPEN→HALF_OPEN
// once the reset timeout has elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case Open:
		if cb.now().Sub(cb.trippedAt) >= cb.config.ResetTimeout {
			cb.state = HalfOpen
			cb.successes = 0
			return nil
		}
		return fmt.Errorf("%s: %w", cb.name, domain.ErrCircuitOpen)
	default:
		return nil
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case HalfOpen:
		cb.successes++
		if cb.successes >= cb.config.HalfOpenMax {
			cb.state = Closed
			cb.failures = 0
			cb.successes = 0
		}
	case Closed:
		if cb.failures > 0 {
			cb.failures--
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case Closed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.state = Open
			cb.trippedAt = cb.now()
			cb.totalTrips++
		}
	case HalfOpen:
		cb.state = Open
		cb.trippedAt = cb.now()
		cb.totalTrips++
	}
}

// State returns the current state, resolving a pending OPEN→HALF_OPEN
// transition first.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == Open && cb.now().Sub(cb.trippedAt) >= cb.config.ResetTimeout {
		cb.state = HalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Snapshot is a point-in-time view; the daemon reads it to publish each
// adapter's breaker state as a Prometheus gauge.
type Snapshot struct {
	Name       string
	State      State
	Failures   int
	TotalTrips int
}

func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Snapshot{Name: cb.name, State: cb.state, Failures: cb.failures, TotalTrips: cb.totalTrips}
}

// Reset forces the breaker back to CLOSED.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = Closed
	cb.failures = 0
	cb.successes = 0
}

// Wrap runs fn if the breaker allows it, recording the outcome. Returns
// domain.ErrCircuitOpen without calling fn when the breaker is open.
func Wrap[T any](cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		if err := cb.Allow(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err != nil {
			cb.recordFailure()
			return zero, err
		}
		cb.recordSuccess()
		return result, nil
	}
}
