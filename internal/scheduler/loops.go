package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/metrics"
)

// Loop intervals.
const (
	SchedulingInterval          = 5 * time.Minute
	PerformanceMonitoringInterval = 15 * time.Minute
	AdaptiveLearningInterval    = 60 * time.Minute
)

// Adaptive-loop step size and bounds.
const (
	adaptiveStep               = 0.01
	confidenceThresholdFloor   = 0.70
	confidenceThresholdCeiling = 0.85
	autoExecThresholdFloor     = 0.80
	autoExecThresholdCeiling   = 0.95
	adaptiveWindow             = 20
	performanceWindow          = 10
)

// PerformanceSnapshot is the performance-monitoring loop's rolling summary.
type PerformanceSnapshot struct {
	ComputedAt        time.Time
	AverageConfidence float64
	AutoExecutionRate float64
	SampleSize        int
}

// Run starts all three loops and blocks until ctx is cancelled. The fleet
// snapshot each scheduling tick reads comes from deps.Fleet.
func (s *Scheduler) Run(ctx context.Context) {
	done := make(chan struct{}, 3)
	go func() { s.runSchedulingLoop(ctx); done <- struct{}{} }()
	go func() { s.runPerformanceLoop(ctx); done <- struct{}{} }()
	go func() { s.runAdaptiveLoop(ctx); done <- struct{}{} }()
	<-done
	<-done
	<-done
}

func (s *Scheduler) runSchedulingLoop(ctx context.Context) {
	ticker := time.NewTicker(SchedulingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			s.schedulingTick(ctx)
			metrics.LoopTickDuration.WithLabelValues("scheduler_scheduling").Observe(time.Since(start).Seconds())
			s.mu.Lock()
			s.lastSchedulingTick = s.Now()
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) schedulingTick(ctx context.Context) {
	if s.deps.Fleet == nil {
		return
	}
	trainsets, err := s.deps.Fleet.Fleet(ctx)
	if err != nil {
		log.Printf("[scheduler] fleet read failed: %v", err)
		return
	}
	views := make([]domain.TrainsetView, len(trainsets))
	for i, t := range trainsets {
		views[i] = s.Decorate(t)
	}
	if _, needed, err := s.RunOnce(ctx, views); err != nil && needed {
		log.Printf("[scheduler] schedule generation failed: %v", err)
	}
}

func (s *Scheduler) runPerformanceLoop(ctx context.Context) {
	ticker := time.NewTicker(PerformanceMonitoringInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			s.PerformanceTick()
			metrics.LoopTickDuration.WithLabelValues("scheduler_performance").Observe(time.Since(start).Seconds())
			s.mu.Lock()
			s.lastPerformanceTick = s.Now()
			s.mu.Unlock()
		}
	}
}

// PerformanceTick computes rolling statistics over the last
// performanceWindow schedules.
func (s *Scheduler) PerformanceTick() PerformanceSnapshot {
	history := s.History()
	if len(history) > performanceWindow {
		history = history[len(history)-performanceWindow:]
	}
	snap := PerformanceSnapshot{ComputedAt: s.Now(), SampleSize: len(history)}
	if len(history) == 0 {
		return snap
	}
	autoExecuted := 0
	confidenceSum := 0.0
	for _, h := range history {
		confidenceSum += h.Confidence
		if h.Routed == domain.RoutedAutoExecuted {
			autoExecuted++
		}
	}
	snap.AverageConfidence = confidenceSum / float64(len(history))
	snap.AutoExecutionRate = float64(autoExecuted) / float64(len(history))
	return snap
}

func (s *Scheduler) runAdaptiveLoop(ctx context.Context) {
	ticker := time.NewTicker(AdaptiveLearningInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			s.AdaptiveTick()
			metrics.LoopTickDuration.WithLabelValues("scheduler_adaptive").Observe(time.Since(start).Seconds())
			s.mu.Lock()
			s.lastAdaptiveTick = s.Now()
			s.mu.Unlock()
		}
	}
}

// AdaptiveTick computes the success rate over the last adaptiveWindow
// schedules among those that were executed and adjusts both thresholds.
// Schedules that were never executed (approval-requested or
// discarded) don't contribute to the rate — there's no executed outcome to
// score.
func (s *Scheduler) AdaptiveTick() {
	history := s.History()
	if len(history) > adaptiveWindow {
		history = history[len(history)-adaptiveWindow:]
	}
	executed := 0
	succeeded := 0
	for _, h := range history {
		if !h.Executed {
			continue
		}
		executed++
		if h.ExecutionSucceeded {
			succeeded++
		}
	}
	if executed == 0 {
		return
	}
	successRate := float64(succeeded) / float64(executed)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case successRate > 0.9:
		s.thresholds.ConfidenceThreshold = maxf(confidenceThresholdFloor, s.thresholds.ConfidenceThreshold-adaptiveStep)
		s.thresholds.AutoExecutionThreshold = maxf(autoExecThresholdFloor, s.thresholds.AutoExecutionThreshold-adaptiveStep)
	case successRate < 0.7:
		s.thresholds.ConfidenceThreshold = minf(confidenceThresholdCeiling, s.thresholds.ConfidenceThreshold+adaptiveStep)
		s.thresholds.AutoExecutionThreshold = minf(autoExecThresholdCeiling, s.thresholds.AutoExecutionThreshold+adaptiveStep)
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
