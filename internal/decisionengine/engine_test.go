package decisionengine

import (
	"context"
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

type fakeFleet struct {
	trainsets []domain.Trainset
}

func (f fakeFleet) Fleet(ctx context.Context) ([]domain.Trainset, error) {
	return f.trainsets, nil
}

// Expired-fitness trainsets flow from one evaluator pass through the
// executor to an out-of-order status write and an emergency alert.
func TestExpiredFitnessEvaluatesAndExecutes(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	nextYear := time.Now().Add(365 * 24 * time.Hour)
	fleet := fakeFleet{trainsets: []domain.Trainset{
		{ID: "TS001", Status: domain.StatusAvailable, FitnessValid: false, FitnessExpiry: &yesterday},
		{ID: "TS002", Status: domain.StatusAvailable, FitnessValid: true, FitnessExpiry: &nextYear},
	}}

	status := &fakeStatusWriter{}
	notify := &fakeNotifier{}
	executor := NewExecutor(Dependencies{Status: status, Notify: notify}, nil, nil)
	engine := NewEngine(NewEvaluator(DefaultEvaluatorConfig(), nil), executor, fleet)

	decisions, err := engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if d.Type != domain.DecisionEmergencyResponse || d.Urgency != domain.UrgencyCritical {
		t.Fatalf("decision = %+v, want critical emergency-response", d)
	}
	if d.Confidence != 1.0 || d.RequiresHumanApproval {
		t.Fatalf("decision = %+v, want confidence 1.0 and no approval", d)
	}
	if len(d.AffectedTrainsets) != 1 || d.AffectedTrainsets[0] != "TS001" {
		t.Fatalf("affected = %v, want [TS001]", d.AffectedTrainsets)
	}
	if d.ExecutionDeadline == nil || d.ExecutionDeadline.Sub(d.CreatedAt) != 5*time.Minute {
		t.Fatalf("deadline = %v, want created+5m", d.ExecutionDeadline)
	}

	executor.Tick(context.Background(), time.Now())
	if len(status.calls) != 1 || status.calls[0] != "TS001:out-of-order" {
		t.Fatalf("status calls = %v, want [TS001:out-of-order]", status.calls)
	}
	if len(notify.emergencies) != 1 {
		t.Fatalf("expected one emergency alert, got %d", len(notify.emergencies))
	}
	if len(executor.Active()) != 0 {
		t.Fatal("executed decision should have left the active set")
	}
}
