package domain

import "time"

// Algorithm selects which optimizer driver runs an OptimizationRequest.
type Algorithm int

const (
	AlgorithmExact Algorithm = iota
	AlgorithmPopulation
	AlgorithmLocalSearch
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmExact:
		return "constraint_programming"
	case AlgorithmPopulation:
		return "genetic_algorithm"
	case AlgorithmLocalSearch:
		return "simulated_annealing"
	default:
		return "unknown"
	}
}

// OptimizationConstraints bounds and weights a single optimization run.
type OptimizationConstraints struct {
	RequireValidFitness       bool
	ExcludeHighPriorityJobs   bool
	RespectMaintenanceWindows bool

	MileageBalanceWeight    float64 // default 0.6
	BrandingWeight          float64 // default 0.3
	EnergyEfficiencyWeight  float64 // default 0.4
	PositionPreferenceWeight float64 // scales the position term; 1.0 in DefaultConstraints

	MaxMileageVariance      float64 // 0.15, advisory
	MinReliabilityScore     float64 // 0.7, advisory
	MaxDaysSinceMaintenance int     // 60, advisory
	MaxTrainsetsToAssign    int     // 20, advisory
	ReserveTrainsets        int     // 3, advisory
}

// DefaultConstraints returns the standard production weights and bounds.
func DefaultConstraints() OptimizationConstraints {
	return OptimizationConstraints{
		RequireValidFitness:       true,
		ExcludeHighPriorityJobs:   true,
		RespectMaintenanceWindows: true,
		MileageBalanceWeight:      0.6,
		BrandingWeight:            0.3,
		EnergyEfficiencyWeight:    0.4,
		PositionPreferenceWeight:  1.0,
		MaxMileageVariance:        0.15,
		MinReliabilityScore:       0.7,
		MaxDaysSinceMaintenance:   60,
		MaxTrainsetsToAssign:      20,
		ReserveTrainsets:          3,
	}
}

// OptimizationRequest is the optimizer's public input.
type OptimizationRequest struct {
	ID             string
	Algorithm      Algorithm
	MaxPositions   int
	TimeoutSeconds int
	Parameters     map[string]float64
	Constraints    OptimizationConstraints

	// Seed, when non-nil, is used to construct the driver's RNG so that
	// population/local-search runs are reproducible.
	Seed *uint64
}

// CompletionStatus is the optimizer's terminal state for one run.
type CompletionStatus int

const (
	StatusCompleted CompletionStatus = iota
	StatusFailed
)

func (s CompletionStatus) String() string {
	if s == StatusCompleted {
		return "completed"
	}
	return "failed"
}

// OptimizationResult is the optimizer's public output.
type OptimizationResult struct {
	OptimizationID       string
	Algorithm            Algorithm
	Assignment           Assignment
	Score                float64
	ExecutionTime        time.Duration
	Reasoning            map[string]string // trainset id -> reasoning string
	ConstraintViolations map[string]int
	Status               CompletionStatus
	FailureReason        string

	Recommendations []string
	Warnings        []string
}

// AlternativeSolution is a secondary result generated alongside the primary
// one, with the trade-offs that distinguish it.
type AlternativeSolution struct {
	Result     OptimizationResult
	TradeOffs  []string
}

// BulkOptimizationRequest runs a named list of requests sequentially,
// exercised by `induction schedule --bulk`.
type BulkOptimizationRequest struct {
	Name     string
	Requests []OptimizationRequest
}

// ScheduleType is the window kind a GeneratedSchedule was produced for.
type ScheduleType int

const (
	SchedulePeakHour ScheduleType = iota
	ScheduleOffPeak
	ScheduleNightService
	ScheduleMaintenanceWindow
	ScheduleEmergencyResponse
	ScheduleWeekend
	ScheduleHoliday
)

func (s ScheduleType) String() string {
	switch s {
	case SchedulePeakHour:
		return "peak-hour"
	case ScheduleOffPeak:
		return "off-peak"
	case ScheduleNightService:
		return "night-service"
	case ScheduleMaintenanceWindow:
		return "maintenance-window"
	case ScheduleEmergencyResponse:
		return "emergency-response"
	case ScheduleWeekend:
		return "weekend"
	case ScheduleHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// SchedulePriority is the optimization objective a schedule type implies.
type SchedulePriority int

const (
	PriorityPassengerComfort SchedulePriority = iota
	PriorityEnergy
	PriorityMaintenanceOptimization
	PriorityEfficiency
	PriorityCostReduction
)

func (p SchedulePriority) String() string {
	switch p {
	case PriorityPassengerComfort:
		return "passenger-comfort"
	case PriorityEnergy:
		return "energy"
	case PriorityMaintenanceOptimization:
		return "maintenance-optimization"
	case PriorityEfficiency:
		return "efficiency"
	case PriorityCostReduction:
		return "cost-reduction"
	default:
		return "unknown"
	}
}

// ExecutionStep is one step of a GeneratedSchedule's execution plan.
type ExecutionStep struct {
	Name          string
	ScheduledTime time.Duration // offset from generation time
	Duration      time.Duration
}

// MonitoringAlert flags a concern surfaced during schedule enrichment.
type MonitoringAlert struct {
	Severity    string
	Message     string
	TrainsetID  string
}

// ScheduleRequest is the composed input to one scheduling cycle.
type ScheduleRequest struct {
	Type               ScheduleType
	Priority           SchedulePriority
	WindowStart        time.Time
	WindowEnd          time.Time
	DemandForecast     float64
	WeatherMultiplier  float64
	Constraints        OptimizationConstraints
	MinTrainsets       int
	MaxTrainsets       int
	EnergyCapKWh       float64
	CostCap            float64
}

// GeneratedSchedule is the Scheduler's public output.
type GeneratedSchedule struct {
	ID                 string
	GeneratedAt        time.Time
	Type               ScheduleType
	Result             OptimizationResult
	PerformanceMetrics map[string]float64
	RiskAssessment     map[string]float64
	Confidence         float64
	Alternatives       []AlternativeSolution
	ExecutionPlan      []ExecutionStep
	MonitoringAlerts   []MonitoringAlert

	// Routed, Executed, ExecutionSucceeded record what the routing-by-
	// confidence step did with this schedule, feeding the
	// adaptive-learning loop's success-rate computation.
	Routed            RoutingOutcome
	Executed          bool
	ExecutionSucceeded bool
}

// RoutingOutcome is what the confidence-routing step decided.
type RoutingOutcome int

const (
	RoutedDiscarded RoutingOutcome = iota
	RoutedForApproval
	RoutedAutoExecuted
)

func (r RoutingOutcome) String() string {
	switch r {
	case RoutedForApproval:
		return "approval-requested"
	case RoutedAutoExecuted:
		return "auto-executed"
	default:
		return "discarded"
	}
}
