// Package collab holds reference adapters that satisfy the core's
// collaborator interfaces (domain.FleetReader, domain.StatusWriter,
// domain.Notifier, domain.Predictor, domain.FeedbackSink). These are the
// "batteries included" wiring a small deployment can run with directly; a
// larger deployment swaps any one of them out without touching the core.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kmra/induction/internal/domain"
)

// MemoryFleet is an in-memory domain.FleetReader + domain.StatusWriter over a
// fixed set of trainsets, seeded once at construction. Status writes mutate
// the stored copy directly — the 60-second idempotency window
// is approximated here by simply overwriting the prior status, since an
// in-memory store has no duplicate-delivery problem to guard against.
type MemoryFleet struct {
	mu        sync.RWMutex
	trainsets map[string]domain.Trainset
}

// NewMemoryFleet seeds the store from an initial snapshot.
func NewMemoryFleet(initial []domain.Trainset) *MemoryFleet {
	m := &MemoryFleet{trainsets: make(map[string]domain.Trainset, len(initial))}
	for _, t := range initial {
		m.trainsets[t.ID] = t
	}
	return m
}

// Fleet returns a snapshot of all trainsets, in no particular order.
func (m *MemoryFleet) Fleet(ctx context.Context) ([]domain.Trainset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Trainset, 0, len(m.trainsets))
	for _, t := range m.trainsets {
		out = append(out, t)
	}
	return out, nil
}

// SetStatus updates one trainset's status in place. Returns
// domain.ErrTrainsetNotFound if the ID is unknown.
func (m *MemoryFleet) SetStatus(ctx context.Context, trainsetID string, status domain.TrainsetStatus, meta domain.StatusMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trainsets[trainsetID]
	if !ok {
		return domain.ErrTrainsetNotFound
	}
	if status == domain.StatusCleaning {
		now := meta.Timestamp
		if now.IsZero() {
			now = time.Now()
		}
		t.LastCleaning = &now
	}
	t.Status = status
	m.trainsets[trainsetID] = t
	return nil
}

// Get returns one trainset by ID, for tests and the status API.
func (m *MemoryFleet) Get(id string) (domain.Trainset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trainsets[id]
	return t, ok
}

// LoadFleetFixture reads a JSON-encoded []domain.Trainset from path, used by
// the CLI's `--seed` flags.
func LoadFleetFixture(path string) ([]domain.Trainset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fleet fixture: %w", err)
	}
	var trainsets []domain.Trainset
	if err := json.Unmarshal(raw, &trainsets); err != nil {
		return nil, fmt.Errorf("parse fleet fixture: %w", err)
	}
	return trainsets, nil
}

// LoadBulkOptimizationFixture reads a JSON-encoded domain.BulkOptimizationRequest,
// used by the `schedule --bulk` CLI flag to replay a named list of
// optimization requests without starting the service.
func LoadBulkOptimizationFixture(path string) (domain.BulkOptimizationRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.BulkOptimizationRequest{}, fmt.Errorf("read bulk fixture: %w", err)
	}
	var req domain.BulkOptimizationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return domain.BulkOptimizationRequest{}, fmt.Errorf("parse bulk fixture: %w", err)
	}
	return req, nil
}

// DemoFleet builds a small deterministic fleet for first-run demos and
// tests when no --seed fixture is supplied.
func DemoFleet() []domain.Trainset {
	mk := func(i int, status domain.TrainsetStatus, mileage float64, branding int, highPriorityWork bool) domain.Trainset {
		return domain.Trainset{
			ID:                       fmt.Sprintf("TS%03d", i),
			Number:                   fmt.Sprintf("%03d", i),
			Status:                   status,
			CumulativeMileage:        mileage,
			CurrentMileage:           mileage,
			FitnessValid:             true,
			PendingWorkOrders:        0,
			HighPriorityWork:         highPriorityWork,
			BrandingPriority:         branding,
			BrandingRevenuePotential: float64(branding) * 1500,
			StablingPreference:       i % 4,
			ReliabilityScore:         0.85,
			EnergyEfficiencyScore:    0.8,
		}
	}
	return []domain.Trainset{
		mk(1, domain.StatusAvailable, 42000, 3, false),
		mk(2, domain.StatusAvailable, 58000, 1, false),
		mk(3, domain.StatusAvailable, 39500, 5, false),
		mk(4, domain.StatusAvailable, 61000, 2, false),
		mk(5, domain.StatusMaintenance, 72000, 1, true),
		mk(6, domain.StatusAvailable, 45000, 4, false),
		mk(7, domain.StatusAvailable, 50200, 2, false),
		mk(8, domain.StatusAvailable, 33000, 3, false),
	}
}
