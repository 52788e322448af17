package domain

import (
	"context"
	"time"
)

// ─── Collaborator Interfaces ───────────────────────────────────────────
// These interfaces define the boundary between the core and its external
// collaborators. Infrastructure implements them; the core depends on them.

// FleetReader returns the current fleet snapshot.
type FleetReader interface {
	Fleet(ctx context.Context) ([]Trainset, error)
}

// StatusMeta accompanies a status write.
type StatusMeta struct {
	Actor       string
	Reason      string
	Timestamp   time.Time
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// StatusWriter sets a trainset's status. Idempotent w.r.t. (trainset, target
// status) within a 60-second window.
type StatusWriter interface {
	SetStatus(ctx context.Context, trainsetID string, status TrainsetStatus, meta StatusMeta) error
}

// ApprovalRequest is sent on the non-urgent, batchable approval channel.
type ApprovalRequest struct {
	DecisionID string
	Summary    string
	Decision   Decision
}

// OperationalNotice is sent on the operational notification channel (e.g.
// "schedule posted").
type OperationalNotice struct {
	Summary  string
	Schedule *GeneratedSchedule
}

// EmergencyAlert is sent on the synchronous emergency channel.
type EmergencyAlert struct {
	DecisionID string
	Summary    string
	Trainsets  []string
}

// Notifier fans a Decision or GeneratedSchedule event out over three
// channels.
type Notifier interface {
	NotifyApproval(ctx context.Context, req ApprovalRequest) error
	NotifyOperational(ctx context.Context, msg OperationalNotice) error
	NotifyEmergency(ctx context.Context, alert EmergencyAlert) error
}

// FeedbackSink appends outcome records for the learning loop.
type FeedbackSink interface {
	Record(ctx context.Context, rec OutcomeRecord) error
}

// PredictionResult is the ML prediction interface's output.
type PredictionResult struct {
	SuccessProbability float64
	MaintenanceHours   float64
	EnergyConsumption  float64
}

// Predictor is the ML prediction interface called by the Decision Engine's
// schedule-optimization rule. A missing feature key defaults per the
// documented values (mileage_balance 0.5, performance std 0.1) — callers are
// expected to fill the map; Predictor implementations may also apply the
// defaults defensively.
type Predictor interface {
	Predict(ctx context.Context, features map[string]float64) (PredictionResult, error)
}

// HistoryStore persists the bounded history rings so they survive process
// restarts. Optional: an in-memory ring
// satisfies the same read/write shape without implementing this interface.
type HistoryStore interface {
	AppendDecisionOutcome(ctx context.Context, rec DecisionOutcome) error
	AppendSchedule(ctx context.Context, sched GeneratedSchedule) error
	RecentSchedules(ctx context.Context, n int) ([]GeneratedSchedule, error)
}
