package decisionengine

import (
	"context"
	"testing"

	"github.com/kmra/induction/internal/domain"
)

type fakeNotifier struct {
	emergencies []domain.EmergencyAlert
	approvals   []domain.ApprovalRequest
}

func (f *fakeNotifier) NotifyApproval(ctx context.Context, req domain.ApprovalRequest) error {
	f.approvals = append(f.approvals, req)
	return nil
}
func (f *fakeNotifier) NotifyOperational(ctx context.Context, msg domain.OperationalNotice) error {
	return nil
}
func (f *fakeNotifier) NotifyEmergency(ctx context.Context, alert domain.EmergencyAlert) error {
	f.emergencies = append(f.emergencies, alert)
	return nil
}

func TestHandlerForAllKinds(t *testing.T) {
	kinds := []domain.ActionKind{
		domain.ActionOptimizeSchedule,
		domain.ActionScheduleMaintenance,
		domain.ActionEmergencyDeactivate,
		domain.ActionScheduleCleaning,
	}
	for _, k := range kinds {
		if _, ok := handlerFor(k); !ok {
			t.Fatalf("no handler registered for kind %v", k)
		}
	}
}

func TestHandlerForUnknownKind(t *testing.T) {
	if _, ok := handlerFor(domain.ActionKind(99)); ok {
		t.Fatal("expected no handler for an unregistered kind")
	}
}

func TestEmergencyDeactivateNotifiesAndSetsStatus(t *testing.T) {
	status := &fakeStatusWriter{}
	notify := &fakeNotifier{}
	deps := Dependencies{Status: status, Notify: notify}

	dec := domain.Decision{
		ID:                "d1",
		AffectedTrainsets: []string{"T1", "T2"},
		Action: domain.ActionPlan{
			Kind:                domain.ActionEmergencyDeactivate,
			EmergencyDeactivate: &domain.EmergencyDeactivateParams{Reason: "fitness expired"},
		},
	}

	handler, _ := handlerFor(domain.ActionEmergencyDeactivate)
	success, details := handler.Handle(context.Background(), dec, deps)
	if !success {
		t.Fatalf("expected success, got details=%q", details)
	}
	if len(status.calls) != 2 {
		t.Fatalf("expected 2 status writes, got %v", status.calls)
	}
	if len(notify.emergencies) != 1 || notify.emergencies[0].DecisionID != "d1" {
		t.Fatalf("expected one emergency notification for d1, got %v", notify.emergencies)
	}
}

func TestOptimizeScheduleHandlerPropagatesFailure(t *testing.T) {
	deps := Dependencies{
		RunOptimization: func(ctx context.Context) (domain.OptimizationResult, error) {
			return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "no eligible trainsets"}, nil
		},
	}
	handler, _ := handlerFor(domain.ActionOptimizeSchedule)
	success, details := handler.Handle(context.Background(), domain.Decision{}, deps)
	if success {
		t.Fatal("expected failure when optimizer reports StatusFailed")
	}
	if details == "" {
		t.Fatal("expected a non-empty failure detail")
	}
}

func TestOptimizeScheduleHandlerMissingOptimizer(t *testing.T) {
	handler, _ := handlerFor(domain.ActionOptimizeSchedule)
	success, _ := handler.Handle(context.Background(), domain.Decision{}, Dependencies{})
	if success {
		t.Fatal("expected failure when no optimizer is wired")
	}
}
