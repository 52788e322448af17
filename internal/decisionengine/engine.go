package decisionengine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/metrics"
)

// EvaluatorInterval and ExecutorInterval are the two loops' tick periods.
const (
	EvaluatorInterval = 30 * time.Second
	ExecutorInterval  = 10 * time.Second
)

// Engine runs the evaluator and executor loops concurrently against one
// shared active-decision set.
type Engine struct {
	Evaluator *Evaluator
	Executor  *Executor
	Fleet     domain.FleetReader

	// Decorate attaches the Health Assessor's latest view onto each raw
	// Trainset before evaluation. Defaults to a no-op that reports
	// HealthGood when left nil — the service layer wires the real
	// assessor output here.
	Decorate func(domain.Trainset) domain.TrainsetView

	tickMu             sync.RWMutex
	lastEvaluatorTick  time.Time
	lastExecutorTick   time.Time
}

// LastEvaluatorTick reports when the evaluator loop last completed a tick,
// surfaced by the ambient /health endpoint.
func (e *Engine) LastEvaluatorTick() time.Time {
	e.tickMu.RLock()
	defer e.tickMu.RUnlock()
	return e.lastEvaluatorTick
}

// LastExecutorTick reports when the executor loop last completed a tick.
func (e *Engine) LastExecutorTick() time.Time {
	e.tickMu.RLock()
	defer e.tickMu.RUnlock()
	return e.lastExecutorTick
}

// NewEngine wires an Evaluator and Executor behind one Engine.
func NewEngine(evaluator *Evaluator, executor *Executor, fleet domain.FleetReader) *Engine {
	return &Engine{Evaluator: evaluator, Executor: executor, Fleet: fleet}
}

// Run starts both loops and blocks until ctx is cancelled. Each loop ticks
// on its own interval; a tick never overlaps its own previous tick (the
// ticker channel only fires again after the handler returns).
func (e *Engine) Run(ctx context.Context) {
	done := make(chan struct{}, 2)
	go func() { e.runEvaluatorLoop(ctx); done <- struct{}{} }()
	go func() { e.runExecutorLoop(ctx); done <- struct{}{} }()
	<-done
	<-done
}

func (e *Engine) runEvaluatorLoop(ctx context.Context) {
	ticker := time.NewTicker(EvaluatorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			e.evaluateOnce(ctx)
			metrics.LoopTickDuration.WithLabelValues("decision_evaluator").Observe(time.Since(start).Seconds())
			e.tickMu.Lock()
			e.lastEvaluatorTick = time.Now()
			e.tickMu.Unlock()
		}
	}
}

func (e *Engine) runExecutorLoop(ctx context.Context) {
	ticker := time.NewTicker(ExecutorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			e.Executor.Tick(ctx, time.Now())
			metrics.LoopTickDuration.WithLabelValues("decision_executor").Observe(time.Since(start).Seconds())
			e.tickMu.Lock()
			e.lastExecutorTick = time.Now()
			e.tickMu.Unlock()
		}
	}
}

func (e *Engine) evaluateOnce(ctx context.Context) {
	if _, err := e.Tick(ctx); err != nil {
		log.Printf("[decisionengine] fleet read failed: %v", err)
	}
}

// Tick runs one evaluator pass against the current fleet snapshot, submits
// any resulting decisions to the executor, and returns them — the same
// work the evaluator loop performs each interval, exposed for one-shot
// callers (`induction decide`).
func (e *Engine) Tick(ctx context.Context) ([]domain.Decision, error) {
	trainsets, err := e.Fleet.Fleet(ctx)
	if err != nil {
		return nil, err
	}
	decorate := e.Decorate
	if decorate == nil {
		decorate = func(t domain.Trainset) domain.TrainsetView { return domain.Decorate(t, domain.HealthGood, 0, nil) }
	}
	views := make([]domain.TrainsetView, len(trainsets))
	for i, t := range trainsets {
		views[i] = decorate(t)
	}
	decisions := e.Evaluator.Evaluate(ctx, views, time.Now())
	if len(decisions) > 0 {
		e.Executor.Submit(decisions)
	}
	return decisions, nil
}
