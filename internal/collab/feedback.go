package collab

import (
	"context"
	"time"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/infra/sqlite"
)

// SQLiteFeedback adapts internal/infra/sqlite.DB to domain.FeedbackSink and
// domain.HistoryStore. The underlying DB already implements both method
// sets directly; this wrapper exists so callers depend on the collab
// package's constructor rather than reaching into internal/infra/sqlite
// themselves, keeping every collaborator adapter behind this package.
type SQLiteFeedback struct {
	db *sqlite.DB
}

// NewSQLiteFeedback opens (or creates) the state database under dir.
func NewSQLiteFeedback(dir string) (*SQLiteFeedback, error) {
	db, err := sqlite.Open(dir)
	if err != nil {
		return nil, err
	}
	return &SQLiteFeedback{db: db}, nil
}

func (s *SQLiteFeedback) Close() error {
	return s.db.Close()
}

func (s *SQLiteFeedback) Record(ctx context.Context, rec domain.OutcomeRecord) error {
	return s.db.Record(ctx, rec)
}

func (s *SQLiteFeedback) AppendDecisionOutcome(ctx context.Context, rec domain.DecisionOutcome) error {
	return s.db.AppendDecisionOutcome(ctx, rec)
}

func (s *SQLiteFeedback) AppendSchedule(ctx context.Context, sched domain.GeneratedSchedule) error {
	return s.db.AppendSchedule(ctx, sched)
}

func (s *SQLiteFeedback) RecentSchedules(ctx context.Context, n int) ([]domain.GeneratedSchedule, error) {
	return s.db.RecentSchedules(ctx, n)
}

func (s *SQLiteFeedback) AppendTelemetry(ctx context.Context, trainsetID, component string, recordedAt time.Time, value float64) error {
	return s.db.AppendTelemetry(ctx, trainsetID, component, recordedAt, value)
}

func (s *SQLiteFeedback) TelemetrySince(ctx context.Context, trainsetID, component string, since time.Time) ([]float64, error) {
	return s.db.TelemetrySince(ctx, trainsetID, component, since)
}
