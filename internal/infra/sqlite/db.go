// Package sqlite provides SQLite-based persistent storage for the
// induction system's decision outcomes and schedule history.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/kmra/induction/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			decision_id     TEXT PRIMARY KEY,
			decision_type   TEXT NOT NULL,
			completed_at    INTEGER NOT NULL,
			outcome_kind    TEXT NOT NULL,
			details         TEXT NOT NULL DEFAULT '',
			planned_metrics TEXT NOT NULL DEFAULT '{}',
			actual_metrics  TEXT NOT NULL DEFAULT '{}',
			success_score   REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_completed ON decisions(completed_at)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			schedule_id   TEXT PRIMARY KEY,
			generated_at  INTEGER NOT NULL,
			schedule_type TEXT NOT NULL,
			confidence    REAL NOT NULL,
			routed        TEXT NOT NULL,
			executed      BOOLEAN NOT NULL DEFAULT 0,
			succeeded     BOOLEAN NOT NULL DEFAULT 0,
			payload       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_generated ON schedules(generated_at)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			schedule_id        TEXT NOT NULL,
			recorded_at        INTEGER NOT NULL,
			affected_trainsets TEXT NOT NULL DEFAULT '[]',
			planned_metrics    TEXT NOT NULL DEFAULT '{}',
			actual_metrics     TEXT NOT NULL DEFAULT '{}',
			feedback_kind      TEXT NOT NULL DEFAULT '',
			success_score      REAL NOT NULL DEFAULT 0,
			operator_feedback  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_schedule ON outcomes(schedule_id)`,
		`CREATE TABLE IF NOT EXISTS telemetry (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			trainset_id TEXT NOT NULL,
			component   TEXT NOT NULL,
			recorded_at INTEGER NOT NULL,
			value       REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_telemetry_trainset ON telemetry(trainset_id, component, recorded_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── domain.HistoryStore ────────────────────────────────────────────────────

// AppendDecisionOutcome persists one completed decision.
func (d *DB) AppendDecisionOutcome(ctx context.Context, rec domain.DecisionOutcome) error {
	planned, err := json.Marshal(rec.PlannedMetrics)
	if err != nil {
		return err
	}
	actual, err := json.Marshal(rec.ActualMetrics)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO decisions (decision_id, decision_type, completed_at, outcome_kind, details, planned_metrics, actual_metrics, success_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(decision_id) DO UPDATE SET
			completed_at=excluded.completed_at,
			outcome_kind=excluded.outcome_kind,
			details=excluded.details,
			planned_metrics=excluded.planned_metrics,
			actual_metrics=excluded.actual_metrics,
			success_score=excluded.success_score`,
		rec.DecisionID, rec.Type.String(), rec.CompletedAt.Unix(), rec.Kind.String(),
		rec.Details, string(planned), string(actual), rec.SuccessScore,
	)
	return err
}

// AppendSchedule persists one generated schedule for later recall by the
// scheduler's loops or the operational API.
func (d *DB) AppendSchedule(ctx context.Context, sched domain.GeneratedSchedule) error {
	payload, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO schedules (schedule_id, generated_at, schedule_type, confidence, routed, executed, succeeded, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(schedule_id) DO UPDATE SET
			confidence=excluded.confidence,
			routed=excluded.routed,
			executed=excluded.executed,
			succeeded=excluded.succeeded,
			payload=excluded.payload`,
		sched.ID, sched.GeneratedAt.Unix(), sched.Type.String(), sched.Confidence,
		sched.Routed.String(), sched.Executed, sched.ExecutionSucceeded, string(payload),
	)
	return err
}

// RecentSchedules returns the n most-recently-generated schedules, oldest
// first (matching the in-memory ring's ordering in internal/scheduler).
func (d *DB) RecentSchedules(ctx context.Context, n int) ([]domain.GeneratedSchedule, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT payload FROM schedules ORDER BY generated_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GeneratedSchedule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sched domain.GeneratedSchedule
		if err := json.Unmarshal([]byte(payload), &sched); err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ─── domain.FeedbackSink ────────────────────────────────────────────────────

// Record appends an outcome record for the adaptive-learning loop.
func (d *DB) Record(ctx context.Context, rec domain.OutcomeRecord) error {
	trainsets, err := json.Marshal(rec.AffectedTrainsets)
	if err != nil {
		return err
	}
	planned, err := json.Marshal(rec.PlannedMetrics)
	if err != nil {
		return err
	}
	actual, err := json.Marshal(rec.ActualMetrics)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO outcomes (schedule_id, recorded_at, affected_trainsets, planned_metrics, actual_metrics, feedback_kind, success_score, operator_feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ScheduleID, rec.Timestamp.Unix(), string(trainsets), string(planned), string(actual),
		rec.FeedbackKind, rec.SuccessScore, rec.OperatorFeedback,
	)
	return err
}

// ─── Telemetry (feeds internal/health's TelemetryStore on restart) ─────────

// AppendTelemetry persists one component reading, keyed by trainset and
// component name.
func (d *DB) AppendTelemetry(ctx context.Context, trainsetID, component string, recordedAt time.Time, value float64) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO telemetry (trainset_id, component, recorded_at, value) VALUES (?, ?, ?, ?)`,
		trainsetID, component, recordedAt.Unix(), value,
	)
	return err
}

// TelemetrySince returns readings for one trainset/component recorded at or
// after since, oldest first.
func (d *DB) TelemetrySince(ctx context.Context, trainsetID, component string, since time.Time) ([]float64, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT value FROM telemetry WHERE trainset_id = ? AND component = ? AND recorded_at >= ? ORDER BY recorded_at ASC`,
		trainsetID, component, since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
