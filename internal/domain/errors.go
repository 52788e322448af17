package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors
	ErrEmptyFleet          = errors.New("optimizer: trainset list is empty")
	ErrInvalidPositionCap  = errors.New("optimizer: max positions out of range")
	ErrUnknownScheduleType = errors.New("scheduler: unknown schedule type")
	ErrUnknownAlgorithm    = errors.New("optimizer: unknown algorithm")

	// Solver errors — recoverable, never fatal
	ErrSolverTimeout     = errors.New("optimizer: solver timed out")
	ErrSolverInfeasible  = errors.New("optimizer: no feasible assignment found")
	ErrOptimizerQueueFull = errors.New("optimizer: request queue is full")

	// Adapter errors
	ErrAdapterUnavailable = errors.New("adapter: call failed")
	ErrCircuitOpen        = errors.New("circuit breaker is open — adapter unavailable")
	ErrCircuitHalfOpen    = errors.New("circuit breaker is half-open — limited traffic")

	// Missing-data errors — short-circuit cleanly, never fabricate
	ErrMissingTelemetry       = errors.New("health: no telemetry for trainset")
	ErrMissingMaintenanceDate = errors.New("decision: no maintenance-due date")
	ErrTrainsetNotFound       = errors.New("fleet: trainset not found")

	// Decision/state-machine errors
	ErrDecisionNotFound  = errors.New("decision not found in active set")
	ErrDecisionNotReady  = errors.New("decision is not ready to execute")
	ErrApprovalRequired  = errors.New("decision requires human approval")

	// Fatal errors
	ErrShutdown          = errors.New("shutdown signal received")
	ErrInvalidConfig     = errors.New("unrecoverable configuration error")
)
