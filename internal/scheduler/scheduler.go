// Package scheduler implements the Intelligent Scheduler: the
// scheduling-need predicate, schedule generation across the three
// optimizer drivers, confidence-based routing, and the three cooperative
// loops (scheduling, performance-monitoring, adaptive-learning).
package scheduler

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/metrics"
	"github.com/kmra/induction/internal/optimizer"
	"github.com/kmra/induction/internal/scoring"
)

// historyCap bounds the generated-schedules ring; large enough for the
// adaptive loop's 20-schedule window with headroom.
const historyCap = 50

// Default hour sets for the scheduling-need predicate: the critical set is
// the service-transition hours that always warrant a fresh schedule, the
// regen set the background four-hourly refresh. Both are overridable via
// the Scheduler's CriticalHours/RegenHours fields.
var (
	defaultCriticalHours = map[int]bool{5: true, 6: true, 9: true, 12: true, 16: true, 17: true, 20: true, 22: true}
	defaultRegenHours    = map[int]bool{0: true, 4: true, 8: true, 12: true, 16: true, 20: true}
)

// HourSet converts a list of hours into the set form the scheduling-need
// predicate consumes.
func HourSet(hours []int) map[int]bool {
	out := make(map[int]bool, len(hours))
	for _, h := range hours {
		out[h] = true
	}
	return out
}

// costPerKWh is the assumed operating cost rate used to derive a cost cap
// from a template's energy cap.
const costPerKWh = 8.5

// Thresholds are the two adaptive values the learning loop tunes.
type Thresholds struct {
	ConfidenceThreshold     float64
	AutoExecutionThreshold  float64
}

// DefaultThresholds returns values inside both adaptive bound ranges.
func DefaultThresholds() Thresholds {
	return Thresholds{ConfidenceThreshold: 0.75, AutoExecutionThreshold: 0.85}
}

// Dependencies bundles the collaborators the Scheduler needs to route a
// generated schedule. History may be nil — persistence of the
// generated-schedule ring is optional.
type Dependencies struct {
	Fleet   domain.FleetReader
	Status  domain.StatusWriter
	Notify  domain.Notifier
	History domain.HistoryStore
}

// Scheduler owns the bounded history rings and adaptive thresholds.
type Scheduler struct {
	mu         sync.RWMutex
	thresholds Thresholds
	history    []domain.GeneratedSchedule

	deps    Dependencies
	limiter *optimizer.Limiter

	// Now, DayKind and CurrentWeather are the seams tests use to drive the
	// scheduler deterministically; the service layer wires Now to
	// time.Now and DayKind/CurrentWeather to a real calendar/weather
	// adapter.
	Now           func() time.Time
	DayKind       func(time.Time) DayKind
	CurrentWeather func(time.Time) Weather

	// Decorate attaches the Health Assessor's latest view onto each raw
	// Trainset before the scheduling loop evaluates it. Defaults to a
	// HealthGood no-op; the service layer wires the real assessor here.
	Decorate func(domain.Trainset) domain.TrainsetView

	// runAlgorithm dispatches one optimization request; defaults to
	// optimizer.Run and is overridden by tests to inject driver faults.
	runAlgorithm func(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) (domain.OptimizationResult, error)

	// CriticalHours and RegenHours parameterize the scheduling-need
	// predicate; both default to the standard production sets.
	CriticalHours map[int]bool
	RegenHours    map[int]bool

	lastSchedulingTick  time.Time
	lastPerformanceTick time.Time
	lastAdaptiveTick    time.Time
}

// LastSchedulingTick reports when the scheduling loop last completed a
// tick, surfaced by the ambient /health endpoint.
func (s *Scheduler) LastSchedulingTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSchedulingTick
}

// LastPerformanceTick reports when the performance-monitoring loop last
// completed a tick.
func (s *Scheduler) LastPerformanceTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPerformanceTick
}

// LastAdaptiveTick reports when the adaptive-learning loop last completed
// a tick.
func (s *Scheduler) LastAdaptiveTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAdaptiveTick
}

// New constructs a Scheduler with default thresholds and a shared
// optimizer limiter.
func New(deps Dependencies, limiter *optimizer.Limiter) *Scheduler {
	return &Scheduler{
		thresholds:     DefaultThresholds(),
		deps:           deps,
		limiter:        limiter,
		Now:            time.Now,
		DayKind:        func(time.Time) DayKind { return DayWeekday },
		CurrentWeather: func(time.Time) Weather { return WeatherSunny },
		Decorate:       func(t domain.Trainset) domain.TrainsetView { return domain.Decorate(t, domain.HealthGood, 0, nil) },
		runAlgorithm:   optimizer.Run,
		CriticalHours:  defaultCriticalHours,
		RegenHours:     defaultRegenHours,
	}
}

// Thresholds returns a copy of the current adaptive thresholds.
func (s *Scheduler) Thresholds() Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// History returns a snapshot of the generated-schedule ring, most recent
// last.
func (s *Scheduler) History() []domain.GeneratedSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GeneratedSchedule, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Scheduler) appendHistory(sched domain.GeneratedSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, sched)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
}

// needsScheduling reports whether this tick should generate a schedule:
// a critical or regeneration hour within its first ten minutes, or an
// emergency.
func needsScheduling(tp timeParts, emergency bool, critical, regen map[int]bool) bool {
	if critical[tp.Hour] && tp.Minute < 10 {
		return true
	}
	if regen[tp.Hour] && tp.Minute < 10 {
		return true
	}
	return emergency
}

// emergencyHolds reports whether fleet health forces rescheduling now:
// more than a fifth of the available fleet poor or critical, or any
// available trainset running on an expired fitness certificate.
func emergencyHolds(available []domain.TrainsetView, now time.Time) bool {
	if len(available) == 0 {
		return false
	}
	poorOrCritical := 0
	for _, v := range available {
		if v.Health == domain.HealthPoor || v.Health == domain.HealthCritical {
			poorOrCritical++
		}
		if v.FitnessExpired(now) {
			return true
		}
	}
	return float64(poorOrCritical)/float64(len(available)) > 0.2
}

// RunOnce evaluates the scheduling-need predicate and, if triggered,
// generates, enriches, and routes one schedule. ok=false means no schedule
// was needed this tick.
func (s *Scheduler) RunOnce(ctx context.Context, views []domain.TrainsetView) (domain.GeneratedSchedule, bool, error) {
	now := s.Now()
	tp := timeParts{Hour: now.Hour(), Minute: now.Minute(), Weekday: int(now.Weekday())}

	var available []domain.TrainsetView
	for _, v := range views {
		if v.Status == domain.StatusAvailable {
			available = append(available, v)
		}
	}

	if !needsScheduling(tp, emergencyHolds(available, now), s.CriticalHours, s.RegenHours) {
		return domain.GeneratedSchedule{}, false, nil
	}

	sched, err := s.generate(ctx, available, tp, now)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("solver").Inc()
		return domain.GeneratedSchedule{}, true, err
	}
	s.route(ctx, &sched)
	s.appendHistory(sched)
	metrics.ScheduleConfidence.Set(sched.Confidence)
	if s.deps.History != nil {
		if err := s.deps.History.AppendSchedule(ctx, sched); err != nil {
			log.Printf("[scheduler] failed to persist schedule %s: %v", sched.ID, err)
		}
	}
	return sched, true, nil
}

func (s *Scheduler) generate(ctx context.Context, available []domain.TrainsetView, tp timeParts, now time.Time) (domain.GeneratedSchedule, error) {
	var eligible []domain.TrainsetView
	for _, v := range available {
		if v.Health != domain.HealthPoor && v.Health != domain.HealthCritical {
			eligible = append(eligible, v)
		}
	}

	req := s.composeRequest(eligible, tp, now)

	best, ok := s.bestAcrossAlgorithms(ctx, eligible, req.MaxTrainsets)
	if !ok {
		return domain.GeneratedSchedule{}, domain.ErrSolverInfeasible
	}

	performance := performanceMetrics(eligible, best, req.MaxTrainsets, req.EnergyCapKWh, req.CostCap)
	risk := riskAssessment(eligible, best, req)
	confidence := composeConfidence(optimizationQuality(best), len(eligible), best.Algorithm, performance, risk)

	alternatives := s.alternatives(ctx, eligible, req.MinTrainsets, req.MaxTrainsets)

	sched := domain.GeneratedSchedule{
		ID:                 uuid.NewString(),
		GeneratedAt:        now,
		Type:               req.Type,
		Result:             best,
		PerformanceMetrics: performance,
		RiskAssessment:     risk,
		Confidence:         confidence,
		Alternatives:       alternatives,
		ExecutionPlan:      buildExecutionPlan(),
		MonitoringAlerts:   monitoringAlerts(eligible, best, performance),
	}
	return sched, nil
}

// composeRequest builds the ScheduleRequest for one cycle: derive
// the type from the clock, take the matching template's bounds, clamp them
// to the eligible fleet, and price the demand forecast through the current
// weather multiplier.
func (s *Scheduler) composeRequest(eligible []domain.TrainsetView, tp timeParts, now time.Time) domain.ScheduleRequest {
	schedType := deriveScheduleType(tp)
	tmpl := templates[schedType]

	minT := tmpl.MinTrainsets
	if floor := len(eligible) / 3; floor > minT {
		minT = floor
	}
	maxT := tmpl.MaxTrainsets
	if len(eligible) < maxT {
		maxT = len(eligible)
	}
	if maxT < minT {
		maxT = minT
	}

	weather := s.CurrentWeather(now)
	energyCap := tmpl.EnergyCapPerTrainsetKWh * float64(maxT)

	return domain.ScheduleRequest{
		Type:              schedType,
		Priority:          tmpl.Priority,
		WindowStart:       now,
		WindowEnd:         now.Add(time.Duration(tmpl.FrequencyMinutes) * time.Minute),
		DemandForecast:    DemandForecast(tp.Hour, s.DayKind(now)) * weather.Multiplier(),
		WeatherMultiplier: weather.Multiplier(),
		Constraints:       domain.DefaultConstraints(),
		MinTrainsets:      minT,
		MaxTrainsets:      maxT,
		EnergyCapKWh:      energyCap,
		CostCap:           energyCap * costPerKWh,
	}
}

// bestAcrossAlgorithms runs all three drivers and keeps the highest-scoring
// completed result.
func (s *Scheduler) bestAcrossAlgorithms(ctx context.Context, eligible []domain.TrainsetView, maxPositions int) (domain.OptimizationResult, bool) {
	if len(eligible) == 0 || maxPositions <= 0 {
		return domain.OptimizationResult{}, false
	}
	algorithms := []domain.Algorithm{domain.AlgorithmExact, domain.AlgorithmPopulation, domain.AlgorithmLocalSearch}

	var best domain.OptimizationResult
	found := false
	for _, algo := range algorithms {
		req := domain.OptimizationRequest{
			ID:             uuid.NewString(),
			Algorithm:      algo,
			MaxPositions:   maxPositions,
			TimeoutSeconds: 30,
			Constraints:    domain.DefaultConstraints(),
		}
		run := func(ctx context.Context) (domain.OptimizationResult, error) {
			return s.runAlgorithm(ctx, req, eligible)
		}
		var result domain.OptimizationResult
		var err error
		if s.limiter != nil {
			result, err = s.limiter.Run(ctx, run)
		} else {
			result, err = run(ctx)
		}
		if err != nil || result.Status != domain.StatusCompleted {
			continue
		}
		if !found || result.Score > best.Score {
			best = result
			found = true
		}
	}
	return best, found
}

func (s *Scheduler) alternatives(ctx context.Context, eligible []domain.TrainsetView, minT, maxT int) []domain.AlternativeSolution {
	var out []domain.AlternativeSolution
	narrower := maxT - 3
	if narrower >= minT && narrower > 0 {
		if r, ok := s.bestAcrossAlgorithms(ctx, eligible, narrower); ok {
			out = append(out, domain.AlternativeSolution{Result: r, TradeOffs: []string{"fewer trainsets in service, lower energy draw"}})
		}
	}
	wider := maxT + 3
	if wider <= len(eligible) {
		if r, ok := s.bestAcrossAlgorithms(ctx, eligible, wider); ok {
			out = append(out, domain.AlternativeSolution{Result: r, TradeOffs: []string{"more trainsets in service, higher energy draw"}})
		}
	}
	return out
}

// optimizationQuality normalizes a result's raw score into [0,1] against an
// approximate per-trainset ceiling (base 100 + fitness 50 + balance 100 +
// branding 100 + position 50 = 400).
func optimizationQuality(result domain.OptimizationResult) float64 {
	n := len(result.Assignment)
	if n == 0 {
		return 0
	}
	q := result.Score / (400.0 * float64(n))
	if q > 1 {
		q = 1
	}
	if q < 0 {
		q = 0
	}
	return q
}

// performanceMetrics derives the six [0,1] enrichment metrics for an
// assignment. cost_effectiveness compares how much of the cost cap the
// chosen trainset count consumes — fewer trainsets relative to the capped
// maximum scores higher (cheaper to run).
func performanceMetrics(eligible []domain.TrainsetView, result domain.OptimizationResult, maxT int, energyCap, costCap float64) map[string]float64 {
	assigned := assignedViews(eligible, result.Assignment)
	if len(assigned) == 0 {
		return map[string]float64{
			"efficiency": 0, "reliability": 0, "energy_efficiency": 0,
			"passenger_satisfaction": 0, "maintenance_optimality": 0, "cost_effectiveness": 0,
		}
	}
	reliabilities := make([]float64, len(assigned))
	efficiencies := make([]float64, len(assigned))
	maintained := 0
	for i, v := range assigned {
		reliabilities[i] = v.ReliabilityScore
		efficiencies[i] = v.EnergyEfficiencyScore
		if !v.HighPriorityWork {
			maintained++
		}
	}
	fillRatio := 0.0
	if maxT > 0 {
		fillRatio = clamp01(float64(len(assigned)) / float64(maxT))
	}
	costEffectiveness := 1.0
	if costCap > 0 {
		projectedCost := float64(len(assigned)) * (energyCap / math.Max(1, float64(maxT))) * costPerKWh
		costEffectiveness = clamp01(1 - projectedCost/costCap)
	}
	return map[string]float64{
		"efficiency":             clamp01(scoring.Mean(efficiencies)),
		"reliability":            clamp01(scoring.Mean(reliabilities)),
		"energy_efficiency":      clamp01(scoring.Mean(efficiencies)),
		"passenger_satisfaction": fillRatio,
		"maintenance_optimality": clamp01(float64(maintained) / float64(len(assigned))),
		"cost_effectiveness":     costEffectiveness,
	}
}

func riskAssessment(eligible []domain.TrainsetView, result domain.OptimizationResult, req domain.ScheduleRequest) map[string]float64 {
	assigned := assignedViews(eligible, result.Assignment)
	operational := 1.0
	if len(assigned) > 0 {
		reliabilities := make([]float64, len(assigned))
		for i, v := range assigned {
			reliabilities[i] = v.ReliabilityScore
		}
		operational = clamp01(1 - scoring.Mean(reliabilities))
	}
	maintenance := 0.0
	for _, v := range assigned {
		if v.HighPriorityWork {
			maintenance++
		}
	}
	if len(assigned) > 0 {
		maintenance = clamp01(maintenance / float64(len(assigned)))
	}
	// Sunny's multiplier (1.0) maps to zero risk, stormy's (1.4) to full.
	weatherRisk := clamp01((req.WeatherMultiplier - 1.0) / 0.4)
	// Trainsets the demand forecast calls for vs. trainsets assigned.
	demandMismatch := 0.0
	if target := req.DemandForecast / perTrainsetCapacity; target > 0 {
		demandMismatch = clamp01(math.Abs(float64(len(assigned))-target) / target)
	}
	overall := (operational + maintenance + weatherRisk + demandMismatch) / 4
	return map[string]float64{
		"operational":     operational,
		"maintenance":     maintenance,
		"weather":         weatherRisk,
		"demand_mismatch": demandMismatch,
		"overall":         overall,
	}
}

func monitoringAlerts(eligible []domain.TrainsetView, result domain.OptimizationResult, performance map[string]float64) []domain.MonitoringAlert {
	var alerts []domain.MonitoringAlert
	for _, v := range assignedViews(eligible, result.Assignment) {
		if v.Health == domain.HealthFair || v.Health == domain.HealthPoor || v.Health == domain.HealthCritical {
			alerts = append(alerts, domain.MonitoringAlert{
				Severity:   v.Health.String(),
				Message:    "assigned trainset health below good",
				TrainsetID: v.ID,
			})
		}
	}
	for metric, value := range performance {
		if value < 0.5 {
			alerts = append(alerts, domain.MonitoringAlert{
				Severity: "warning",
				Message:  "performance metric " + metric + " below 0.5",
			})
		}
	}
	return alerts
}

func assignedViews(views []domain.TrainsetView, a domain.Assignment) []domain.TrainsetView {
	byID := make(map[string]domain.TrainsetView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	out := make([]domain.TrainsetView, 0, len(a))
	for id := range a {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// route applies confidence-based routing: auto-execute, request approval,
// or discard.
func (s *Scheduler) route(ctx context.Context, sched *domain.GeneratedSchedule) {
	th := s.Thresholds()
	switch {
	case sched.Confidence >= th.AutoExecutionThreshold:
		sched.Routed = domain.RoutedAutoExecuted
		sched.Executed = true
		sched.ExecutionSucceeded = s.runExecutionPlan(ctx, sched)
	case sched.Confidence >= th.ConfidenceThreshold:
		sched.Routed = domain.RoutedForApproval
		if s.deps.Notify != nil {
			_ = s.deps.Notify.NotifyApproval(ctx, domain.ApprovalRequest{
				DecisionID: sched.ID,
				Summary:    "schedule awaiting approval",
			})
		}
	default:
		sched.Routed = domain.RoutedDiscarded
		log.Printf("[scheduler] schedule %s discarded: confidence %.2f below threshold", sched.ID, sched.Confidence)
	}
}

// runExecutionPlan marks every assigned trainset in-service via the status
// writer, stopping on the first error, then posts an operational notice.
// The schedule's ExecutionPlan steps are not walked one by one here.
func (s *Scheduler) runExecutionPlan(ctx context.Context, sched *domain.GeneratedSchedule) bool {
	if s.deps.Status == nil {
		return false
	}
	meta := domain.StatusMeta{Actor: "scheduler", Reason: "schedule " + sched.ID, Timestamp: s.Now()}
	for id := range sched.Result.Assignment {
		if err := s.deps.Status.SetStatus(ctx, id, domain.StatusInService, meta); err != nil {
			log.Printf("[scheduler] execution step failed for %s: %v", id, err)
			return false
		}
	}
	if s.deps.Notify != nil {
		_ = s.deps.Notify.NotifyOperational(ctx, domain.OperationalNotice{Summary: "schedule activated", Schedule: sched})
	}
	return true
}
