package domain

import "time"

// DecisionType classifies the kind of autonomous decision.
type DecisionType int

const (
	DecisionScheduleOptimization DecisionType = iota
	DecisionMaintenanceScheduling
	DecisionEmergencyResponse
	DecisionResourceAllocation
	DecisionRouteAdjustment
	DecisionCleaningSchedule
)

func (d DecisionType) String() string {
	switch d {
	case DecisionScheduleOptimization:
		return "schedule-optimization"
	case DecisionMaintenanceScheduling:
		return "maintenance-scheduling"
	case DecisionEmergencyResponse:
		return "emergency-response"
	case DecisionResourceAllocation:
		return "resource-allocation"
	case DecisionRouteAdjustment:
		return "route-adjustment"
	case DecisionCleaningSchedule:
		return "cleaning-schedule"
	default:
		return "unknown"
	}
}

// Urgency is the decision's priority tag.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ActionKind selects the execution handler for a Decision's action plan.
// Closed tagged union — no open-world reflection.
type ActionKind int

const (
	ActionOptimizeSchedule ActionKind = iota
	ActionScheduleMaintenance
	ActionEmergencyDeactivate
	ActionScheduleCleaning
)

func (a ActionKind) String() string {
	switch a {
	case ActionOptimizeSchedule:
		return "optimize_schedule"
	case ActionScheduleMaintenance:
		return "schedule_maintenance"
	case ActionEmergencyDeactivate:
		return "emergency_deactivate"
	case ActionScheduleCleaning:
		return "schedule_cleaning"
	default:
		return "unknown"
	}
}

// ActionPlan carries the parameters a handler needs, keyed by Kind. Only the
// field matching Kind is meaningful.
type ActionPlan struct {
	Kind ActionKind

	OptimizeSchedule     *OptimizeScheduleParams
	ScheduleMaintenance  *ScheduleMaintenanceParams
	EmergencyDeactivate  *EmergencyDeactivateParams
	ScheduleCleaning     *ScheduleCleaningParams
}

type OptimizeScheduleParams struct {
	PredictedSuccess float64
}

type ScheduleMaintenanceParams struct {
	DaysUntilDue int
}

type EmergencyDeactivateParams struct {
	Reason string
}

type ScheduleCleaningParams struct {
	TrainsetIDs []string
}

// Decision is one emitted autonomous decision.
type Decision struct {
	ID                    string
	Type                  DecisionType
	Urgency               Urgency
	CreatedAt             time.Time
	Confidence            float64
	Rationale             string
	Action                ActionPlan
	AffectedTrainsets     []string
	EstimatedImpact       map[string]float64
	RequiresHumanApproval bool
	Approved              bool
	ExecutionDeadline     *time.Time
}

// ReadyToExecute reports whether the decision may run now: its
// deadline has not passed, and either it needs no approval or approval has
// been granted.
func (d Decision) ReadyToExecute(now time.Time) bool {
	if d.ExecutionDeadline != nil && now.After(*d.ExecutionDeadline) {
		return false
	}
	if d.RequiresHumanApproval && !d.Approved {
		return false
	}
	return true
}

// Expired reports whether the deadline has passed.
func (d Decision) Expired(now time.Time) bool {
	return d.ExecutionDeadline != nil && now.After(*d.ExecutionDeadline)
}

// OutcomeKind classifies how a decision's execution concluded.
type OutcomeKind int

const (
	OutcomeSucceeded OutcomeKind = iota
	OutcomeFailed
	OutcomeDiscardedExpired
)

func (o OutcomeKind) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscardedExpired:
		return "discarded-expired"
	default:
		return "unknown"
	}
}

// DecisionOutcome is the immutable record appended to history once a
// decision leaves the active set.
type DecisionOutcome struct {
	DecisionID      string
	Type            DecisionType
	CompletedAt     time.Time
	Kind            OutcomeKind
	Details         string
	PlannedMetrics  map[string]float64
	ActualMetrics   map[string]float64
	SuccessScore    float64 // 1.0 or 0.0
}

// OutcomeRecord is the feedback sink's wire record.
type OutcomeRecord struct {
	ScheduleID        string
	Timestamp         time.Time
	AffectedTrainsets []string
	PlannedMetrics    map[string]float64
	ActualMetrics     map[string]float64
	FeedbackKind      string
	SuccessScore      float64
	OperatorFeedback  string
}
