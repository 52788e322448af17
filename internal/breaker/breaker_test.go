package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

func newTestBreaker(cfg Config, now *time.Time) *CircuitBreaker {
	cb := New("test", cfg)
	cb.now = func() time.Time { return *now }
	return cb
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 3, ResetTimeout: time.Minute, HalfOpenMax: 1}, &now)

	boom := errors.New("boom")
	call := Wrap(cb, func(ctx context.Context) (int, error) { return 0, boom })

	for i := 0; i < 3; i++ {
		if _, err := call(context.Background()); err != boom {
			t.Fatalf("call %d error = %v, want boom", i, err)
		}
	}
	if cb.State() != Open {
		t.Fatalf("State() = %v, want Open after 3 failures", cb.State())
	}
	if _, err := call(context.Background()); !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("call after trip error = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerHalfOpenAfterResetTimeout(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 1, ResetTimeout: 10 * time.Second, HalfOpenMax: 1}, &now)

	call := Wrap(cb, func(ctx context.Context) (int, error) { return 0, errors.New("x") })
	call(context.Background())
	if cb.State() != Open {
		t.Fatal("expected Open after one failure with threshold 1")
	}

	now = now.Add(11 * time.Second)
	if cb.State() != HalfOpen {
		t.Fatalf("State() = %v, want HalfOpen after reset timeout elapses", cb.State())
	}
}

func TestBreakerClosesAfterHalfOpenSuccesses(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 1, ResetTimeout: time.Second, HalfOpenMax: 2}, &now)

	fail := Wrap(cb, func(ctx context.Context) (int, error) { return 0, errors.New("x") })
	fail(context.Background())
	now = now.Add(2 * time.Second) // allow half-open

	ok := Wrap(cb, func(ctx context.Context) (int, error) { return 1, nil })
	ok(context.Background())
	if cb.State() != HalfOpen {
		t.Fatalf("State() = %v, want still HalfOpen after 1/2 probes", cb.State())
	}
	ok(context.Background())
	if cb.State() != Closed {
		t.Fatalf("State() = %v, want Closed after enough successful probes", cb.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 1, ResetTimeout: time.Second, HalfOpenMax: 2}, &now)

	fail := Wrap(cb, func(ctx context.Context) (int, error) { return 0, errors.New("x") })
	fail(context.Background())
	now = now.Add(2 * time.Second)
	cb.State() // resolve transition to half-open

	fail(context.Background())
	if cb.State() != Open {
		t.Fatalf("State() = %v, want Open after a half-open probe failure", cb.State())
	}
}

func TestBreakerResetForcesClosed(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 1, ResetTimeout: time.Minute, HalfOpenMax: 1}, &now)
	fail := Wrap(cb, func(ctx context.Context) (int, error) { return 0, errors.New("x") })
	fail(context.Background())
	if cb.State() != Open {
		t.Fatal("expected Open")
	}
	cb.Reset()
	if cb.State() != Closed {
		t.Fatalf("State() = %v, want Closed after Reset", cb.State())
	}
}

func TestBreakerSuccessDecaysFailuresWithoutTripping(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(Config{FailureThreshold: 3, ResetTimeout: time.Minute, HalfOpenMax: 1}, &now)
	fail := Wrap(cb, func(ctx context.Context) (int, error) { return 0, errors.New("x") })
	ok := Wrap(cb, func(ctx context.Context) (int, error) { return 1, nil })

	fail(context.Background())
	fail(context.Background())
	ok(context.Background())
	ok(context.Background())
	fail(context.Background())
	if cb.State() != Closed {
		t.Fatalf("State() = %v, want still Closed: intermixed successes should decay the failure count", cb.State())
	}
}
