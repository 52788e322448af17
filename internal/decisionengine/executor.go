package decisionengine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/metrics"
)

// Executor owns the active-decision set and advances it once per tick.
// Single writer, non-reentrant — the engine never runs two ticks
// concurrently.
type Executor struct {
	mu       sync.Mutex
	active   map[string]domain.Decision
	notified map[string]bool // decision IDs whose approval request went out
	deps     Dependencies
	feedback domain.FeedbackSink
	history  domain.HistoryStore
}

// NewExecutor constructs an Executor. feedback and history may be nil — a
// nil feedback sink just skips the record; a nil history store skips
// persistence.
func NewExecutor(deps Dependencies, feedback domain.FeedbackSink, history domain.HistoryStore) *Executor {
	return &Executor{
		active:   make(map[string]domain.Decision),
		notified: make(map[string]bool),
		deps:     deps,
		feedback: feedback,
		history:  history,
	}
}

// Submit adds newly evaluated decisions to the active set.
func (x *Executor) Submit(decisions []domain.Decision) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, d := range decisions {
		x.active[d.ID] = d
	}
}

// Approve marks a decision as approved so a subsequent tick can execute it.
func (x *Executor) Approve(decisionID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	d, ok := x.active[decisionID]
	if !ok {
		return domain.ErrDecisionNotFound
	}
	d.Approved = true
	x.active[decisionID] = d
	return nil
}

// Active returns a snapshot of the currently active decisions.
func (x *Executor) Active() []domain.Decision {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]domain.Decision, 0, len(x.active))
	for _, d := range x.active {
		out = append(out, d)
	}
	return out
}

// Tick advances every active decision once: expired decisions are dropped
// with a discarded-expired outcome (the only silent-discard path, logged
// here); ready decisions are dispatched and removed regardless of outcome;
// everything else is left for the next tick.
func (x *Executor) Tick(ctx context.Context, now time.Time) {
	x.mu.Lock()
	pending := make([]domain.Decision, 0, len(x.active))
	for _, d := range x.active {
		pending = append(pending, d)
	}
	x.mu.Unlock()

	for _, d := range pending {
		if d.Expired(now) {
			log.Printf("[decisionengine] decision %s (%s) expired unexecuted, discarding", d.ID, d.Type)
			x.finish(ctx, d, domain.OutcomeDiscardedExpired, false, "deadline passed before execution", now)
			continue
		}
		if !d.ReadyToExecute(now) {
			x.requestApproval(ctx, d)
			continue
		}
		x.execute(ctx, d, now)
	}
	x.mu.Lock()
	metrics.ActiveDecisions.Set(float64(len(x.active)))
	x.mu.Unlock()
}

// requestApproval sends one approval request per decision over the
// non-urgent notifier channel, the first tick the decision is seen
// waiting. Delivery failure just retries next tick.
func (x *Executor) requestApproval(ctx context.Context, d domain.Decision) {
	if !d.RequiresHumanApproval || d.Approved || x.deps.Notify == nil {
		return
	}
	x.mu.Lock()
	already := x.notified[d.ID]
	x.mu.Unlock()
	if already {
		return
	}
	err := x.deps.Notify.NotifyApproval(ctx, domain.ApprovalRequest{
		DecisionID: d.ID,
		Summary:    d.Rationale,
		Decision:   d,
	})
	if err != nil {
		log.Printf("[decisionengine] approval request for %s failed: %v", d.ID, err)
		return
	}
	x.mu.Lock()
	x.notified[d.ID] = true
	x.mu.Unlock()
}

func (x *Executor) execute(ctx context.Context, d domain.Decision, now time.Time) {
	handler, ok := handlerFor(d.Action.Kind)
	if !ok {
		x.finish(ctx, d, domain.OutcomeFailed, false, "no handler for action kind", now)
		return
	}
	success, details := handler.Handle(ctx, d, x.deps)
	kind := domain.OutcomeFailed
	if success {
		kind = domain.OutcomeSucceeded
	}
	x.finish(ctx, d, kind, success, details, now)
}

func (x *Executor) finish(ctx context.Context, d domain.Decision, kind domain.OutcomeKind, success bool, details string, now time.Time) {
	x.mu.Lock()
	delete(x.active, d.ID)
	delete(x.notified, d.ID)
	x.mu.Unlock()
	metrics.DecisionsRouted.WithLabelValues(kind.String()).Inc()

	successScore := 0.0
	if success {
		successScore = 1.0
	}
	outcome := domain.DecisionOutcome{
		DecisionID:   d.ID,
		Type:         d.Type,
		CompletedAt:  now,
		Kind:         kind,
		Details:      details,
		ActualMetrics: map[string]float64{"success_score": successScore},
		SuccessScore: successScore,
	}
	if x.history != nil {
		if err := x.history.AppendDecisionOutcome(ctx, outcome); err != nil {
			log.Printf("[decisionengine] failed to persist outcome for %s: %v", d.ID, err)
		}
	}
	if x.feedback != nil {
		rec := domain.OutcomeRecord{
			ScheduleID:        d.ID,
			Timestamp:         now,
			AffectedTrainsets: d.AffectedTrainsets,
			ActualMetrics:     outcome.ActualMetrics,
			FeedbackKind:      kind.String(),
			SuccessScore:      successScore,
		}
		if err := x.feedback.Record(ctx, rec); err != nil {
			log.Printf("[decisionengine] failed to record feedback for %s: %v", d.ID, err)
		}
	}
}
