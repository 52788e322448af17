package decisionengine

import (
	"context"
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

type fakePredictor struct {
	prob float64
	err  error
}

func (f fakePredictor) Predict(ctx context.Context, features map[string]float64) (domain.PredictionResult, error) {
	return domain.PredictionResult{SuccessProbability: f.prob}, f.err
}

func trainset(id string, status domain.TrainsetStatus) domain.TrainsetView {
	return domain.TrainsetView{Trainset: domain.Trainset{ID: id, Status: status}}
}

func TestScheduleOptimizationFiresWithinWindow(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), fakePredictor{prob: 0.9})
	now := time.Date(2026, 1, 1, 6, 2, 0, 0, time.UTC)
	fleet := []domain.TrainsetView{trainset("A", domain.StatusAvailable)}

	d, ok := e.scheduleOptimization(context.Background(), fleet, now)
	if !ok {
		t.Fatal("expected schedule-optimization decision at hour 6, minute 2")
	}
	if d.Urgency != domain.UrgencyHigh || d.RequiresHumanApproval {
		t.Fatalf("unexpected decision shape: %+v", d)
	}
	if d.Action.Kind != domain.ActionOptimizeSchedule {
		t.Fatalf("action kind = %v, want optimize-schedule", d.Action.Kind)
	}
}

func TestScheduleOptimizationSkipsOutsideWindow(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), fakePredictor{prob: 0.99})
	now := time.Date(2026, 1, 1, 6, 10, 0, 0, time.UTC) // past the 5-minute window
	if _, ok := e.scheduleOptimization(context.Background(), nil, now); ok {
		t.Fatal("expected no decision outside the first-five-minutes window")
	}
}

func TestScheduleOptimizationSkipsBelowConfidence(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), fakePredictor{prob: 0.5})
	now := time.Date(2026, 1, 1, 10, 1, 0, 0, time.UTC)
	if _, ok := e.scheduleOptimization(context.Background(), nil, now); ok {
		t.Fatal("expected no decision below confidence threshold")
	}
}

func TestMaintenanceSchedulingThresholds(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	dueSoon := now.Add(12 * time.Hour) // < 1 day
	dueIn3 := now.Add(70 * time.Hour)  // ~2.9 days
	tooFar := now.Add(96 * time.Hour)  // 4 days

	fleet := []domain.TrainsetView{
		withNextMaintenance(trainset("URGENT", domain.StatusAvailable), &dueSoon),
		withNextMaintenance(trainset("SOON", domain.StatusAvailable), &dueIn3),
		withNextMaintenance(trainset("LATER", domain.StatusAvailable), &tooFar),
	}

	decisions := e.maintenanceScheduling(fleet, now)
	byID := map[string]domain.Decision{}
	for _, d := range decisions {
		byID[d.AffectedTrainsets[0]] = d
	}

	urgent, ok := byID["URGENT"]
	if !ok || urgent.Urgency != domain.UrgencyHigh || !urgent.RequiresHumanApproval {
		t.Fatalf("URGENT decision = %+v, ok=%v, want high urgency + approval", urgent, ok)
	}
	soon, ok := byID["SOON"]
	if !ok || soon.Urgency != domain.UrgencyMedium || soon.RequiresHumanApproval {
		t.Fatalf("SOON decision = %+v, ok=%v, want medium urgency, no approval", soon, ok)
	}
	if _, ok := byID["LATER"]; ok {
		t.Fatal("LATER trainset is 4 days out, should not fire")
	}
}

func withNextMaintenance(v domain.TrainsetView, due *time.Time) domain.TrainsetView {
	v.NextMaintenanceDue = due
	return v
}

func TestEmergencyResponseFiresOnExpiredFitness(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-24 * time.Hour)

	v := trainset("A", domain.StatusAvailable)
	v.FitnessExpiry = &expired

	decisions := e.emergencyResponse([]domain.TrainsetView{v}, now)
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if d.Urgency != domain.UrgencyCritical || d.RequiresHumanApproval {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestEmergencyResponseSkipsAlreadyOutOfOrder(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-24 * time.Hour)

	v := trainset("A", domain.StatusOutOfOrder)
	v.FitnessExpiry = &expired

	if decisions := e.emergencyResponse([]domain.TrainsetView{v}, now); len(decisions) != 0 {
		t.Fatalf("expected no decisions for already out-of-order trainset, got %v", decisions)
	}
}

func TestCleaningRotationSelectsLeastRecentlyCleanedFirst(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), nil)
	now := time.Date(2026, 1, 1, 22, 3, 0, 0, time.UTC)

	older := now.Add(-72 * time.Hour)
	newer := now.Add(-1 * time.Hour)

	var fleet []domain.TrainsetView
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		fleet = append(fleet, trainset(id, domain.StatusAvailable))
	}
	fleet[0].LastCleaning = &newer  // A: recently cleaned
	fleet[1].LastCleaning = nil     // B: never cleaned -> most overdue
	fleet[2].LastCleaning = &older  // C: long ago

	d, ok := e.cleaningRotation(fleet, now)
	if !ok {
		t.Fatal("expected a cleaning decision with 6 available trainsets")
	}
	// ceil(6/4) = 2 trainsets selected, most overdue first.
	if len(d.AffectedTrainsets) != 2 {
		t.Fatalf("got %d affected trainsets, want 2", len(d.AffectedTrainsets))
	}
	if d.AffectedTrainsets[0] != "B" {
		t.Fatalf("first selected = %s, want B (never cleaned)", d.AffectedTrainsets[0])
	}
}

func TestCleaningRotationSkipsBelowMinimum(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig(), nil)
	now := time.Date(2026, 1, 1, 22, 3, 0, 0, time.UTC)
	fleet := []domain.TrainsetView{trainset("A", domain.StatusAvailable)}
	if _, ok := e.cleaningRotation(fleet, now); ok {
		t.Fatal("expected no cleaning decision below 6 available trainsets")
	}
}

func TestApprovalCeilingForcesApproval(t *testing.T) {
	decisions := []domain.Decision{
		{ID: "1", AffectedTrainsets: []string{"A", "B", "C"}, RequiresHumanApproval: false},
		{ID: "2", AffectedTrainsets: []string{"A"}, RequiresHumanApproval: false},
	}
	applyApprovalCeiling(decisions, 2)
	if !decisions[0].RequiresHumanApproval {
		t.Fatal("decision affecting 3 trainsets should require approval with ceiling 2")
	}
	if decisions[1].RequiresHumanApproval {
		t.Fatal("decision affecting 1 trainset should not require approval with ceiling 2")
	}
}
