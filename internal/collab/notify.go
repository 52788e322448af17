package collab

import (
	"context"
	"log"

	"github.com/kmra/induction/internal/domain"
)

// LogNotifier implements domain.Notifier by writing each channel to the
// process log, tagged by channel name — the same [component] bracketed-tag
// convention used throughout the core loops.
type LogNotifier struct{}

func (LogNotifier) NotifyApproval(ctx context.Context, req domain.ApprovalRequest) error {
	log.Printf("[notify:approval] decision=%s %s", req.DecisionID, req.Summary)
	return nil
}

func (LogNotifier) NotifyOperational(ctx context.Context, msg domain.OperationalNotice) error {
	log.Printf("[notify:operational] %s", msg.Summary)
	return nil
}

func (LogNotifier) NotifyEmergency(ctx context.Context, alert domain.EmergencyAlert) error {
	log.Printf("[notify:emergency] decision=%s trainsets=%v %s", alert.DecisionID, alert.Trainsets, alert.Summary)
	return nil
}
