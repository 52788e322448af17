package decisionengine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/scoring"
)

// EvaluatorConfig holds the evaluator's tunable thresholds.
type EvaluatorConfig struct {
	ConfidenceThreshold    float64 // default 0.75
	MaxAutonomousTrainsets int     // default 10 — forces approval above this
}

// DefaultEvaluatorConfig returns the standard production values.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{ConfidenceThreshold: 0.75, MaxAutonomousTrainsets: 10}
}

// scheduleOptimizationHours are the local hours the schedule-optimization
// rule considers, within the first five minutes of the hour.
var scheduleOptimizationHours = map[int]bool{6: true, 10: true, 14: true, 18: true, 22: true}

// Evaluator runs the four rule evaluators against a fleet snapshot.
type Evaluator struct {
	Config  EvaluatorConfig
	Predict domain.Predictor
}

// NewEvaluator constructs an Evaluator. predict may be nil — the
// schedule-optimization rule simply never fires in that case.
func NewEvaluator(cfg EvaluatorConfig, predict domain.Predictor) *Evaluator {
	return &Evaluator{Config: cfg, Predict: predict}
}

// Evaluate runs all four rules and applies the approval-ceiling pass.
func (e *Evaluator) Evaluate(ctx context.Context, fleet []domain.TrainsetView, now time.Time) []domain.Decision {
	var decisions []domain.Decision

	if d, ok := e.scheduleOptimization(ctx, fleet, now); ok {
		decisions = append(decisions, d)
	}
	decisions = append(decisions, e.maintenanceScheduling(fleet, now)...)
	decisions = append(decisions, e.emergencyResponse(fleet, now)...)
	if d, ok := e.cleaningRotation(fleet, now); ok {
		decisions = append(decisions, d)
	}

	applyApprovalCeiling(decisions, e.Config.MaxAutonomousTrainsets)
	return decisions
}

func (e *Evaluator) scheduleOptimization(ctx context.Context, fleet []domain.TrainsetView, now time.Time) (domain.Decision, bool) {
	if e.Predict == nil || !scheduleOptimizationHours[now.Hour()] || now.Minute() >= 5 {
		return domain.Decision{}, false
	}
	features := composeFeatures(fleet, now)
	result, err := e.Predict.Predict(ctx, features)
	if err != nil || result.SuccessProbability < e.Config.ConfidenceThreshold {
		return domain.Decision{}, false
	}

	deadline := now.Add(15 * time.Minute)
	return domain.Decision{
		ID:                uuid.NewString(),
		Type:              domain.DecisionScheduleOptimization,
		Urgency:           domain.UrgencyHigh,
		CreatedAt:         now,
		Confidence:        result.SuccessProbability,
		Rationale:         fmt.Sprintf("predicted schedule success %.2f at hour %d", result.SuccessProbability, now.Hour()),
		Action:            domain.ActionPlan{Kind: domain.ActionOptimizeSchedule, OptimizeSchedule: &domain.OptimizeScheduleParams{PredictedSuccess: result.SuccessProbability}},
		AffectedTrainsets: trainsetIDs(fleet),
		EstimatedImpact:   map[string]float64{"maintenance_hours": result.MaintenanceHours, "energy_kwh": result.EnergyConsumption},
		RequiresHumanApproval: false,
		ExecutionDeadline: &deadline,
	}, true
}

func (e *Evaluator) maintenanceScheduling(fleet []domain.TrainsetView, now time.Time) []domain.Decision {
	var decisions []domain.Decision
	deadline := now.Add(24 * time.Hour)
	for _, v := range fleet {
		if v.Status != domain.StatusAvailable || v.NextMaintenanceDue == nil {
			continue
		}
		daysUntilDue := int(v.NextMaintenanceDue.Sub(now).Hours() / 24)
		if daysUntilDue > 3 {
			continue
		}
		urgency := domain.UrgencyMedium
		requiresApproval := false
		if daysUntilDue <= 1 {
			urgency = domain.UrgencyHigh
			requiresApproval = true
		}
		decisions = append(decisions, domain.Decision{
			ID:                uuid.NewString(),
			Type:              domain.DecisionMaintenanceScheduling,
			Urgency:           urgency,
			CreatedAt:         now,
			Confidence:        1.0,
			Rationale:         fmt.Sprintf("trainset %s due for maintenance in %d day(s)", v.ID, daysUntilDue),
			Action:            domain.ActionPlan{Kind: domain.ActionScheduleMaintenance, ScheduleMaintenance: &domain.ScheduleMaintenanceParams{DaysUntilDue: daysUntilDue}},
			AffectedTrainsets: []string{v.ID},
			RequiresHumanApproval: requiresApproval,
			ExecutionDeadline: &deadline,
		})
	}
	return decisions
}

func (e *Evaluator) emergencyResponse(fleet []domain.TrainsetView, now time.Time) []domain.Decision {
	var decisions []domain.Decision
	deadline := now.Add(5 * time.Minute)
	for _, v := range fleet {
		if v.Status == domain.StatusOutOfOrder {
			continue
		}
		if !v.FitnessExpired(now) {
			continue
		}
		decisions = append(decisions, domain.Decision{
			ID:         uuid.NewString(),
			Type:       domain.DecisionEmergencyResponse,
			Urgency:    domain.UrgencyCritical,
			CreatedAt:  now,
			Confidence: 1.0,
			Rationale:  fmt.Sprintf("trainset %s fitness certificate expired", v.ID),
			Action: domain.ActionPlan{Kind: domain.ActionEmergencyDeactivate, EmergencyDeactivate: &domain.EmergencyDeactivateParams{
				Reason: "fitness certificate expired",
			}},
			AffectedTrainsets:     []string{v.ID},
			RequiresHumanApproval: false,
			ExecutionDeadline:     &deadline,
		})
	}
	return decisions
}

func (e *Evaluator) cleaningRotation(fleet []domain.TrainsetView, now time.Time) (domain.Decision, bool) {
	if now.Hour() != 22 || now.Minute() >= 10 {
		return domain.Decision{}, false
	}
	var available []domain.TrainsetView
	for _, v := range fleet {
		if v.Status == domain.StatusAvailable {
			available = append(available, v)
		}
	}
	if len(available) < 6 {
		return domain.Decision{}, false
	}

	sort.SliceStable(available, func(i, j int) bool {
		a, b := available[i].LastCleaning, available[j].LastCleaning
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	count := (len(available) + 3) / 4 // ceil(available/4)
	selected := make([]string, 0, count)
	for i := 0; i < count && i < len(available); i++ {
		selected = append(selected, available[i].ID)
	}

	deadline := now.Add(30 * time.Minute)
	return domain.Decision{
		ID:                uuid.NewString(),
		Type:              domain.DecisionCleaningSchedule,
		Urgency:           domain.UrgencyMedium,
		CreatedAt:         now,
		Confidence:        1.0,
		Rationale:         fmt.Sprintf("%d trainset(s) selected for nightly cleaning rotation", len(selected)),
		Action:            domain.ActionPlan{Kind: domain.ActionScheduleCleaning, ScheduleCleaning: &domain.ScheduleCleaningParams{TrainsetIDs: selected}},
		AffectedTrainsets: selected,
		RequiresHumanApproval: false,
		ExecutionDeadline: &deadline,
	}, true
}

// applyApprovalCeiling forces RequiresHumanApproval true on any decision
// whose affected-trainset count exceeds the configured ceiling, regardless
// of what the originating rule decided.
func applyApprovalCeiling(decisions []domain.Decision, ceiling int) {
	if ceiling <= 0 {
		return
	}
	for i := range decisions {
		// Emergency-response decisions never require approval; the ceiling
		// pass must not override that regardless of fleet size.
		if decisions[i].Type == domain.DecisionEmergencyResponse {
			continue
		}
		if len(decisions[i].AffectedTrainsets) > ceiling {
			decisions[i].RequiresHumanApproval = true
		}
	}
}

func composeFeatures(fleet []domain.TrainsetView, now time.Time) map[string]float64 {
	mileages := make([]float64, len(fleet))
	efficiencies := make([]float64, len(fleet))
	maintained := 0
	for i, v := range fleet {
		mileages[i] = v.CurrentMileage
		efficiencies[i] = v.EnergyEfficiencyScore
		if !v.HighPriorityWork {
			maintained++
		}
	}
	mean := scoring.Mean(mileages)
	balance := 0.5
	if mean != 0 {
		balance = 1 - scoring.StdDev(mileages)/mean
		if balance < 0 {
			balance = 0
		}
	}
	maintenanceScore := 0.0
	if len(fleet) > 0 {
		maintenanceScore = float64(maintained) / float64(len(fleet))
	}
	return map[string]float64{
		"hour":              float64(now.Hour()),
		"weekday":           float64(now.Weekday()),
		"day":               float64(now.Day()),
		"month":             float64(now.Month()),
		"trainset_count":    float64(len(fleet)),
		"mileage_balance":   balance,
		"energy_efficiency": scoring.Mean(efficiencies),
		"maintenance_score": maintenanceScore,
	}
}

func trainsetIDs(fleet []domain.TrainsetView) []string {
	ids := make([]string, len(fleet))
	for i, v := range fleet {
		ids[i] = v.ID
	}
	return ids
}
