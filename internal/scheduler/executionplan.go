package scheduler

import (
	"time"

	"github.com/kmra/induction/internal/domain"
)

// buildExecutionPlan returns the five fixed activation steps every
// generated schedule carries.
func buildExecutionPlan() []domain.ExecutionStep {
	return []domain.ExecutionStep{
		{Name: "validate_assignments", ScheduledTime: 0, Duration: 20 * time.Second},
		{Name: "notify_operations", ScheduledTime: 30 * time.Second, Duration: 20 * time.Second},
		{Name: "update_positions", ScheduledTime: 60 * time.Second, Duration: 20 * time.Second},
		{Name: "confirm_trainsets", ScheduledTime: 90 * time.Second, Duration: 20 * time.Second},
		{Name: "activate_schedule", ScheduledTime: 120 * time.Second, Duration: 20 * time.Second},
	}
}
