// Package decisionengine implements the Decision Engine: rule-based
// evaluation of the fleet snapshot into Decision records, and execution of
// ready decisions against the collaborator interfaces.
package decisionengine

import (
	"context"
	"time"

	"github.com/kmra/induction/internal/domain"
)

// Dependencies bundles the collaborator interfaces a handler needs. The
// engine owns exactly one instance; handlers never reach outside it.
type Dependencies struct {
	Status domain.StatusWriter
	Notify domain.Notifier

	// RunOptimization triggers an optimizer pass; wired by the service
	// layer to internal/optimizer.Run with the current fleet snapshot.
	RunOptimization func(ctx context.Context) (domain.OptimizationResult, error)
}

// Handler executes one ActionKind's effect and reports (success, details).
// Closed tagged union: no reflection, the dispatch table in executor.go
// is the only place a Kind maps to a Handler.
type Handler interface {
	Handle(ctx context.Context, dec domain.Decision, deps Dependencies) (bool, string)
}

type optimizeScheduleHandler struct{}

func (optimizeScheduleHandler) Handle(ctx context.Context, dec domain.Decision, deps Dependencies) (bool, string) {
	if deps.RunOptimization == nil {
		return false, "no optimizer wired"
	}
	result, err := deps.RunOptimization(ctx)
	if err != nil {
		return false, "optimization failed: " + err.Error()
	}
	if result.Status != domain.StatusCompleted {
		return false, "optimization did not complete: " + result.FailureReason
	}
	return true, "schedule optimized"
}

type scheduleMaintenanceHandler struct{}

func (scheduleMaintenanceHandler) Handle(ctx context.Context, dec domain.Decision, deps Dependencies) (bool, string) {
	if deps.Status == nil {
		return false, "no status writer wired"
	}
	meta := domain.StatusMeta{Actor: "decision-engine", Reason: dec.Rationale, Timestamp: time.Now()}
	for _, id := range dec.AffectedTrainsets {
		if err := deps.Status.SetStatus(ctx, id, domain.StatusMaintenance, meta); err != nil {
			return false, "status write failed for " + id + ": " + err.Error()
		}
	}
	return true, "maintenance scheduled"
}

type emergencyDeactivateHandler struct{}

func (emergencyDeactivateHandler) Handle(ctx context.Context, dec domain.Decision, deps Dependencies) (bool, string) {
	if deps.Status == nil {
		return false, "no status writer wired"
	}
	reason := "fitness certificate expired"
	if dec.Action.EmergencyDeactivate != nil {
		reason = dec.Action.EmergencyDeactivate.Reason
	}
	meta := domain.StatusMeta{Actor: "decision-engine", Reason: reason, Timestamp: time.Now()}
	for _, id := range dec.AffectedTrainsets {
		if err := deps.Status.SetStatus(ctx, id, domain.StatusOutOfOrder, meta); err != nil {
			return false, "status write failed for " + id + ": " + err.Error()
		}
	}
	if deps.Notify != nil {
		_ = deps.Notify.NotifyEmergency(ctx, domain.EmergencyAlert{
			DecisionID: dec.ID,
			Summary:    reason,
			Trainsets:  dec.AffectedTrainsets,
		})
	}
	return true, "deactivated: " + reason
}

type scheduleCleaningHandler struct{}

func (scheduleCleaningHandler) Handle(ctx context.Context, dec domain.Decision, deps Dependencies) (bool, string) {
	if deps.Status == nil {
		return false, "no status writer wired"
	}
	ids := dec.AffectedTrainsets
	if dec.Action.ScheduleCleaning != nil {
		ids = dec.Action.ScheduleCleaning.TrainsetIDs
	}
	meta := domain.StatusMeta{Actor: "decision-engine", Reason: "cleaning rotation", Timestamp: time.Now()}
	for _, id := range ids {
		if err := deps.Status.SetStatus(ctx, id, domain.StatusCleaning, meta); err != nil {
			return false, "status write failed for " + id + ": " + err.Error()
		}
	}
	return true, "cleaning scheduled"
}

func handlerFor(kind domain.ActionKind) (Handler, bool) {
	switch kind {
	case domain.ActionOptimizeSchedule:
		return optimizeScheduleHandler{}, true
	case domain.ActionScheduleMaintenance:
		return scheduleMaintenanceHandler{}, true
	case domain.ActionEmergencyDeactivate:
		return emergencyDeactivateHandler{}, true
	case domain.ActionScheduleCleaning:
		return scheduleCleaningHandler{}, true
	default:
		return nil, false
	}
}
