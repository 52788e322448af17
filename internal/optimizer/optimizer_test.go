package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

func newTestTrainsets(n int, mileage float64, branding int) []domain.TrainsetView {
	out := make([]domain.TrainsetView, n)
	for i := 0; i < n; i++ {
		out[i] = domain.TrainsetView{
			Trainset: domain.Trainset{
				ID:               idOf(i),
				Status:           domain.StatusAvailable,
				FitnessValid:     true,
				CurrentMileage:   mileage,
				BrandingPriority: branding,
			},
			Health: domain.HealthGood,
		}
	}
	return out
}

func idOf(i int) string {
	return string(rune('A' + i))
}

func baseRequest(algo domain.Algorithm, maxPositions int) domain.OptimizationRequest {
	return domain.OptimizationRequest{
		ID:             "req-1",
		Algorithm:      algo,
		MaxPositions:   maxPositions,
		TimeoutSeconds: 10,
		Constraints:    domain.DefaultConstraints(),
	}
}

func TestExactDriverTieBreakByPosition(t *testing.T) {
	views := newTestTrainsets(3, 50000, 1)
	req := baseRequest(domain.AlgorithmExact, 3)

	result, err := Run(context.Background(), req, views)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != domain.StatusCompleted {
		t.Fatalf("status = %v, want completed", result.Status)
	}
	if len(result.Assignment) != 3 {
		t.Fatalf("assignment size = %d, want 3", len(result.Assignment))
	}
	if !result.Assignment.Injective() {
		t.Fatalf("assignment is not injective: %v", result.Assignment)
	}
	positions := result.Assignment.Positions()
	for _, p := range []int{0, 1, 2} {
		if !positions[p] {
			t.Fatalf("expected position %d to be used, got %v", p, result.Assignment)
		}
	}
	// With DefaultConstraints the balance term carries weight 0.6 and the
	// branding term 0.3, so each pair scores 100+50+60+6 plus its position
	// term: 3*(100+50+60+6) + (50+48+46) = 792.
	if diff := result.Score - 792; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score = %v, want 792", result.Score)
	}
}

func TestValidationErrors(t *testing.T) {
	req := baseRequest(domain.AlgorithmExact, 0)
	_, err := Run(context.Background(), req, newTestTrainsets(1, 1000, 1))
	if err == nil {
		t.Fatal("expected validation error for zero max positions")
	}

	req2 := baseRequest(domain.AlgorithmExact, 3)
	_, err2 := Run(context.Background(), req2, nil)
	if err2 == nil {
		t.Fatal("expected validation error for empty fleet")
	}
}

func TestFeasibilityInvariantAcrossDrivers(t *testing.T) {
	views := newTestTrainsets(6, 12000, 2)
	// Make one trainset infeasible.
	infeasible := views[0]
	infeasible.FitnessValid = false
	views[0] = infeasible

	for _, algo := range []domain.Algorithm{domain.AlgorithmExact, domain.AlgorithmPopulation, domain.AlgorithmLocalSearch} {
		req := baseRequest(algo, 5)
		req.Parameters = map[string]float64{"generations": 20, "population_size": 20, "max_iterations": 200}
		seed := uint64(42)
		req.Seed = &seed

		result, err := Run(context.Background(), req, views)
		if err != nil {
			t.Fatalf("%v: Run: %v", algo, err)
		}
		if !result.Assignment.Injective() {
			t.Fatalf("%v: assignment not injective", algo)
		}
		if _, ok := result.Assignment[views[0].ID]; ok {
			t.Fatalf("%v: infeasible trainset %s appears in assignment", algo, views[0].ID)
		}
	}
}

func TestPopulationDeterministicForFixedSeed(t *testing.T) {
	views := newTestTrainsets(8, 20000, 3)
	req := baseRequest(domain.AlgorithmPopulation, 5)
	req.Parameters = map[string]float64{"generations": 30, "population_size": 30}
	seed := uint64(7)
	req.Seed = &seed

	r1, err := Run(context.Background(), req, views)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r2, err := Run(context.Background(), req, views)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r1.Assignment) != len(r2.Assignment) {
		t.Fatalf("assignment sizes differ: %d vs %d", len(r1.Assignment), len(r2.Assignment))
	}
	for id, pos := range r1.Assignment {
		if r2.Assignment[id] != pos {
			t.Fatalf("assignments differ for fixed seed: %v vs %v", r1.Assignment, r2.Assignment)
		}
	}
}

func TestLimiterRejectsOnOverflow(t *testing.T) {
	l := NewLimiter(LimiterConfig{MaxConcurrent: 1, QueueSize: 1})
	block := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_, _ = l.Run(context.Background(), func(ctx context.Context) (domain.OptimizationResult, error) {
			<-block
			return domain.OptimizationResult{}, nil
		})
		close(done)
	}()

	// Give the first call time to take the only slot.
	time.Sleep(10 * time.Millisecond)

	queued := make(chan struct{})
	go func() {
		_, _ = l.Run(context.Background(), func(ctx context.Context) (domain.OptimizationResult, error) {
			return domain.OptimizationResult{}, nil
		})
		close(queued)
	}()
	time.Sleep(10 * time.Millisecond)

	_, err := l.Run(context.Background(), func(ctx context.Context) (domain.OptimizationResult, error) {
		return domain.OptimizationResult{}, nil
	})
	if err != domain.ErrOptimizerQueueFull {
		t.Fatalf("expected queue-full error, got %v", err)
	}

	close(block)
	<-done
	<-queued
}
