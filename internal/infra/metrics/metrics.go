// Package metrics provides Prometheus metrics for the induction system:
// adapter/loop error counts, per-loop tick duration, optimizer queue depth,
// and active-decision count.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorsTotal counts errors by kind (adapter name, solver failure, etc.).
var ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "induction",
	Name:      "errors_total",
	Help:      "Total errors observed, by kind.",
}, []string{"kind"})

// LoopTickDuration tracks how long one tick of a cooperative loop takes
// (evaluator, executor, scheduling, performance, adaptive).
var LoopTickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "induction",
	Name:      "loop_tick_duration_seconds",
	Help:      "Duration of one tick of a cooperative loop.",
	Buckets:   prometheus.DefBuckets,
}, []string{"loop"})

// OptimizerQueueDepth tracks pending optimization requests held by
// internal/optimizer's bounded limiter.
var OptimizerQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "induction",
	Name:      "optimizer_queue_depth",
	Help:      "Number of optimization requests queued behind the concurrency limiter.",
})

// ActiveDecisions tracks the Decision Engine's current active-decision set
// size.
var ActiveDecisions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "induction",
	Name:      "active_decisions",
	Help:      "Number of decisions currently in the executor's active set.",
})

// ScheduleConfidence tracks the confidence of the most recently generated
// schedule, surfaced by GET /api/status.
var ScheduleConfidence = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "induction",
	Name:      "schedule_confidence",
	Help:      "Confidence score of the most recently generated schedule.",
})

// DecisionsRouted counts decisions by how the executor's routing concluded.
var DecisionsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "induction",
	Name:      "decisions_routed_total",
	Help:      "Total decisions routed, by outcome kind.",
}, []string{"outcome"})

// CircuitBreakerState tracks each wrapped adapter's circuit breaker state
// (0=closed, 1=open, 2=half-open).
var CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "induction",
	Name:      "circuit_breaker_state",
	Help:      "Circuit breaker state per adapter (0=closed, 1=open, 2=half-open).",
}, []string{"adapter"})
