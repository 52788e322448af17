package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmra/induction/internal/api"
	"github.com/kmra/induction/internal/breaker"
	"github.com/kmra/induction/internal/collab"
	"github.com/kmra/induction/internal/decisionengine"
	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/health"
	"github.com/kmra/induction/internal/infra/metrics"
	"github.com/kmra/induction/internal/optimizer"
	"github.com/kmra/induction/internal/scheduler"
)

// Service is the induction system's top-level runtime handle. It owns every
// long-lived component: the Decision Engine, Scheduler, and Health Assessor
// live as fields on one explicitly constructed and torn-down handle rather
// than as package-level singletons.
type Service struct {
	Config Config

	Fleet      *collab.MemoryFleet
	History    *collab.SQLiteFeedback
	Notify     domain.Notifier
	Predict    domain.Predictor
	Telemetry  *health.TelemetryStore
	Assessor   health.Assessor
	Limiter    *optimizer.Limiter
	Engine     *decisionengine.Engine
	Scheduler  *scheduler.Scheduler

	StatusBreaker    *breaker.CircuitBreaker
	NotifyBreaker    *breaker.CircuitBreaker
	PredictBreaker   *breaker.CircuitBreaker

	server *api.Server
	cancel context.CancelFunc
}

// New constructs a Service with the given configuration, seeding the
// reference in-memory fleet from fixture (or a small demo fleet when
// fixture is empty). Construction is sequenced assessor, then engine, then
// scheduler; shutdown runs the reverse.
func New(cfg Config, initialFleet []domain.Trainset) (*Service, error) {
	if len(initialFleet) == 0 {
		initialFleet = collab.DemoFleet()
	}

	history, err := collab.NewSQLiteFeedback(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	fleet := collab.NewMemoryFleet(initialFleet)
	notifier := collab.LogNotifier{}
	predictor := collab.StaticPredictor{}

	statusBreaker := breaker.New("status-writer", breaker.DefaultConfig())
	notifyBreaker := breaker.New("notifier", breaker.DefaultConfig())
	predictBreaker := breaker.New("predictor", breaker.DefaultConfig())

	// ─── Health Assessor ────────────────────────────────────────────────
	telemetry := health.NewTelemetryStore()
	assessor := health.NewCompositeAssessor()

	decorate := func(t domain.Trainset) domain.TrainsetView {
		samples := telemetry.Recent(t.ID)
		preds := assessor.AssessTrainset(t.ID, samples)
		if len(preds) == 0 {
			return domain.Decorate(t, domain.HealthGood, 0, nil)
		}
		return domain.Decorate(t, health.WorstStatus(preds), health.WorstUrgency(preds), nil)
	}

	// ─── Assignment Optimizer (shared bounded limiter) ─────────────────
	limiter := optimizer.NewLimiter(optimizer.LimiterConfig{
		MaxConcurrent: cfg.Optimizer.MaxConcurrent,
		QueueSize:     cfg.Optimizer.QueueSize,
	})

	// ─── Decision Engine ────────────────────────────────────────────────
	evalCfg := decisionengine.EvaluatorConfig{
		ConfidenceThreshold:    cfg.Thresholds.ConfidenceThreshold,
		MaxAutonomousTrainsets: cfg.Thresholds.MaxAutonomousTrainsets,
	}
	wrappedPredict := predictorAdapter{predictBreaker, predictor}
	statusWriter := statusWriterAdapter{statusBreaker, fleet}
	evaluator := decisionengine.NewEvaluator(evalCfg, wrappedPredict)

	engDeps := decisionengine.Dependencies{
		Status: statusWriter,
		Notify: notifierAdapter{notifyBreaker, notifier},
		RunOptimization: func(ctx context.Context) (domain.OptimizationResult, error) {
			views, err := decoratedFleet(ctx, fleet, decorate)
			if err != nil {
				return domain.OptimizationResult{}, err
			}
			req := domain.OptimizationRequest{
				Algorithm:      domain.AlgorithmExact,
				MaxPositions:   cfg.Optimizer.MaxPositions,
				TimeoutSeconds: cfg.Optimizer.DefaultTimeoutSecs,
				Constraints:    domain.DefaultConstraints(),
			}
			return limiter.Run(ctx, func(ctx context.Context) (domain.OptimizationResult, error) {
				return optimizer.Run(ctx, req, views)
			})
		},
	}
	executor := decisionengine.NewExecutor(engDeps, history, history)
	engine := decisionengine.NewEngine(evaluator, executor, fleet)
	engine.Decorate = decorate

	// ─── Intelligent Scheduler ──────────────────────────────────────────
	schedDeps := scheduler.Dependencies{
		Fleet:   fleet,
		Status:  statusWriter,
		Notify:  notifierAdapter{notifyBreaker, notifier},
		History: history,
	}
	sched := scheduler.New(schedDeps, limiter)
	sched.Decorate = decorate
	if len(cfg.Scheduler.CriticalHours) > 0 {
		sched.CriticalHours = scheduler.HourSet(cfg.Scheduler.CriticalHours)
	}
	if len(cfg.Scheduler.RegenHours) > 0 {
		sched.RegenHours = scheduler.HourSet(cfg.Scheduler.RegenHours)
	}

	rehydrateAnomalyProfiles(history, assessor, initialFleet)

	svc := &Service{
		Config:         cfg,
		Fleet:          fleet,
		History:        history,
		Notify:         notifier,
		Predict:        predictor,
		Telemetry:      telemetry,
		Assessor:       assessor,
		Limiter:        limiter,
		Engine:         engine,
		Scheduler:      sched,
		StatusBreaker:  statusBreaker,
		NotifyBreaker:  notifyBreaker,
		PredictBreaker: predictBreaker,
	}

	srv := api.NewServer(svc)
	srv.EnableTelemetryIngest(svc)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	svc.server = srv

	return svc, nil
}

// Serve starts every cooperative loop and the ambient HTTP surface,
// blocking until ctx is cancelled or a shutdown signal arrives.
func (s *Service) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.Engine.Run(ctx)
	go s.Scheduler.Run(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.API.Host, s.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("[service] induction serving on http://%s", addr)
	if s.Config.Telemetry.Prometheus {
		log.Printf("[service] metrics on http://%s/metrics", addr)
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ─── api.StatusProvider ─────────────────────────────────────────────────

// ActiveDecisionCount reports the Decision Engine's current active-decision
// set size.
func (s *Service) ActiveDecisionCount() int {
	return len(s.Engine.Executor.Active())
}

// LastScheduleConfidence reports the most recently generated schedule's
// confidence, or ok=false if no schedule has been generated yet.
func (s *Service) LastScheduleConfidence() (float64, bool) {
	history := s.Scheduler.History()
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1].Confidence, true
}

// OptimizerQueueDepth reports the number of optimization requests queued
// behind the shared concurrency limiter.
func (s *Service) OptimizerQueueDepth() int {
	return s.Limiter.QueueDepth()
}

// OptimizerActiveCount reports the number of optimization requests
// currently holding a run slot.
func (s *Service) OptimizerActiveCount() int {
	return s.Limiter.ActiveCount()
}

// LoopHealth reports every cooperative loop's last-tick timestamp, keyed by
// loop name, for the ambient /health endpoint.
func (s *Service) LoopHealth() map[string]time.Time {
	return map[string]time.Time{
		"decision_evaluator":    s.Engine.LastEvaluatorTick(),
		"decision_executor":     s.Engine.LastExecutorTick(),
		"scheduler_scheduling":  s.Scheduler.LastSchedulingTick(),
		"scheduler_performance": s.Scheduler.LastPerformanceTick(),
		"scheduler_adaptive":    s.Scheduler.LastAdaptiveTick(),
	}
}

// Close shuts down all service resources in reverse construction order.
// The scheduler/engine loops stop via context cancellation in Serve, so
// Close only needs to release the resources New acquired directly.
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.History != nil {
		_ = s.History.Close()
	}
}

// ─── adapter glue ────────────────────────────────────────────────────────
// Each adapter below wraps one collaborator interface behind its circuit
// breaker (a misbehaving adapter degrades to fast failure rather than
// crashing a loop) and increments the matching error-kind counter.

// statusWriterAdapter wraps domain.StatusWriter.
type statusWriterAdapter struct {
	cb    *breaker.CircuitBreaker
	fleet *collab.MemoryFleet
}

func (a statusWriterAdapter) SetStatus(ctx context.Context, trainsetID string, status domain.TrainsetStatus, meta domain.StatusMeta) error {
	_, err := breaker.Wrap(a.cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.fleet.SetStatus(ctx, trainsetID, status, meta)
	})(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("status-writer").Inc()
	}
	reportBreakerState(a.cb)
	return err
}

// predictorAdapter wraps domain.Predictor.
type predictorAdapter struct {
	cb *breaker.CircuitBreaker
	p  domain.Predictor
}

func (a predictorAdapter) Predict(ctx context.Context, features map[string]float64) (domain.PredictionResult, error) {
	result, err := breaker.Wrap(a.cb, func(ctx context.Context) (domain.PredictionResult, error) {
		return a.p.Predict(ctx, features)
	})(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("predictor").Inc()
	}
	reportBreakerState(a.cb)
	return result, err
}

// reportBreakerState publishes one adapter's circuit breaker state to
// Prometheus (0=closed, 1=open, 2=half-open).
func reportBreakerState(cb *breaker.CircuitBreaker) {
	snap := cb.Snapshot()
	metrics.CircuitBreakerState.WithLabelValues(snap.Name).Set(float64(snap.State))
}

// notifierAdapter wraps every domain.Notifier channel behind one circuit
// breaker (transient adapter failure never crashes the Decision
// Engine).
type notifierAdapter struct {
	cb *breaker.CircuitBreaker
	n  domain.Notifier
}

func (a notifierAdapter) NotifyApproval(ctx context.Context, req domain.ApprovalRequest) error {
	_, err := breaker.Wrap(a.cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.n.NotifyApproval(ctx, req)
	})(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("notifier").Inc()
	}
	reportBreakerState(a.cb)
	return err
}

func (a notifierAdapter) NotifyOperational(ctx context.Context, msg domain.OperationalNotice) error {
	_, err := breaker.Wrap(a.cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.n.NotifyOperational(ctx, msg)
	})(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("notifier").Inc()
	}
	reportBreakerState(a.cb)
	return err
}

func (a notifierAdapter) NotifyEmergency(ctx context.Context, alert domain.EmergencyAlert) error {
	// Emergency alerts are synchronous and sent on the executor's tick;
	// failure to deliver never blocks execution, so the error is
	// logged, not propagated.
	_, err := breaker.Wrap(a.cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.n.NotifyEmergency(ctx, alert)
	})(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("notifier").Inc()
		log.Printf("[service] emergency alert delivery failed: %v", err)
	}
	reportBreakerState(a.cb)
	return nil
}

// IngestTelemetry records one sample: into the in-memory analysis ring and,
// per primary component feature, into the persistent telemetry table so
// anomaly profiles survive a restart. This is the event-driven telemetry
// ingestor activity; the ambient HTTP surface exposes it as
// POST /api/telemetry.
func (s *Service) IngestTelemetry(ctx context.Context, sample domain.TelemetrySample) error {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	s.Telemetry.Ingest(sample)
	for component, value := range primaryComponentValues(sample) {
		if err := s.History.AppendTelemetry(ctx, sample.TrainsetID, component, sample.Timestamp, value); err != nil {
			metrics.ErrorsTotal.WithLabelValues("telemetry-store").Inc()
			return err
		}
	}
	return nil
}

// primaryComponentValues maps a sample onto the per-component scalar the
// anomaly detector profiles — the same feature internal/health's
// primaryFeature selects during assessment.
func primaryComponentValues(sample domain.TelemetrySample) map[string]float64 {
	return map[string]float64{
		string(domain.ComponentEngine):  sample.EngineTemperature,
		string(domain.ComponentBrakes):  sample.BrakePressure,
		string(domain.ComponentBattery): sample.BatteryVoltage,
		string(domain.ComponentHVAC):    sample.HVACEfficiency,
		string(domain.ComponentDoors):   float64(sample.DoorCycles),
	}
}

// rehydrateAnomalyProfiles replays the last 30 days of persisted telemetry
// into the trained back-end's anomaly detector so a restart doesn't reset
// every statistical profile to cold.
func rehydrateAnomalyProfiles(history *collab.SQLiteFeedback, assessor *health.CompositeAssessor, fleet []domain.Trainset) {
	ctx := context.Background()
	since := time.Now().Add(-health.RetentionWindow)
	for _, t := range fleet {
		for _, comp := range domain.Components {
			values, err := history.TelemetrySince(ctx, t.ID, string(comp), since)
			if err != nil {
				log.Printf("[service] telemetry rehydrate failed for %s/%s: %v", t.ID, comp, err)
				continue
			}
			for _, v := range values {
				assessor.Trained.Anomaly.Observe(t.ID, string(comp), v)
			}
		}
	}
}

func decoratedFleet(ctx context.Context, fleet domain.FleetReader, decorate func(domain.Trainset) domain.TrainsetView) ([]domain.TrainsetView, error) {
	trainsets, err := fleet.Fleet(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.TrainsetView, len(trainsets))
	for i, t := range trainsets {
		views[i] = decorate(t)
	}
	return views, nil
}
