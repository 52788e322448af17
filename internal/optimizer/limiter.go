package optimizer

import (
	"context"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/metrics"
)

// LimiterConfig bounds concurrent optimization runs.
type LimiterConfig struct {
	MaxConcurrent int // MAX_CONCURRENT_OPTIMIZATIONS, default 5
	QueueSize     int // OPTIMIZATION_QUEUE_SIZE, default 20
}

// DefaultLimiterConfig returns the standard production bounds.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{MaxConcurrent: 5, QueueSize: 20}
}

// Limiter admits at most MaxConcurrent simultaneous Run calls and queues up
// to QueueSize more, rejecting further callers with ErrOptimizerQueueFull.
type Limiter struct {
	slots chan struct{}
	queue chan struct{}
}

// NewLimiter constructs a Limiter from config. The admission channel holds
// MaxConcurrent running requests plus QueueSize waiting ones; anything
// beyond that is rejected rather than queued.
func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{
		slots: make(chan struct{}, cfg.MaxConcurrent),
		queue: make(chan struct{}, cfg.MaxConcurrent+cfg.QueueSize),
	}
}

// Run admits req through the limiter, running fn once a slot is free.
// Returns ErrOptimizerQueueFull immediately if the queue is already full.
func (l *Limiter) Run(ctx context.Context, fn func(ctx context.Context) (domain.OptimizationResult, error)) (domain.OptimizationResult, error) {
	select {
	case l.queue <- struct{}{}:
	default:
		return domain.OptimizationResult{}, domain.ErrOptimizerQueueFull
	}
	metrics.OptimizerQueueDepth.Set(float64(l.QueueDepth()))
	defer func() {
		<-l.queue
		metrics.OptimizerQueueDepth.Set(float64(l.QueueDepth()))
	}()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return domain.OptimizationResult{}, ctx.Err()
	}
	defer func() { <-l.slots }()

	return fn(ctx)
}

// QueueDepth reports the number of requests currently waiting for a slot.
func (l *Limiter) QueueDepth() int {
	d := len(l.queue) - len(l.slots)
	if d < 0 {
		return 0
	}
	return d
}

// ActiveCount reports the number of requests currently holding a run slot.
func (l *Limiter) ActiveCount() int {
	return len(l.slots)
}
