// Package optimizer implements the three Assignment Optimizer algorithm
// drivers: exact (constraint search), population (genetic), and
// local-search (simulated annealing). All three share
// internal/scoring's feasibility predicate and scoring function so they
// never drift from one objective.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/scoring"
)

// Driver runs one algorithm against a fleet snapshot.
type Driver interface {
	Run(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) domain.OptimizationResult
}

// MaxPositionCeiling bounds request.MaxPositions independent of the caller's
// configured global P; requests above it fail validation synchronously.
const MaxPositionCeiling = 200

// ForAlgorithm returns the driver implementing the requested algorithm.
func ForAlgorithm(a domain.Algorithm) (Driver, error) {
	switch a {
	case domain.AlgorithmExact:
		return ExactDriver{}, nil
	case domain.AlgorithmPopulation:
		return PopulationDriver{}, nil
	case domain.AlgorithmLocalSearch:
		return LocalSearchDriver{}, nil
	default:
		return nil, fmt.Errorf("optimizer: %w", domain.ErrUnknownAlgorithm)
	}
}

// Run validates input, dispatches to the requested driver under a
// wall-clock timeout, and returns its result. Validation failures return a
// synchronous error; solver timeout/infeasibility
// never errors — it's reported as a failed OptimizationResult.
func Run(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) (domain.OptimizationResult, error) {
	if err := validate(req, views); err != nil {
		return domain.OptimizationResult{}, err
	}

	driver, err := ForAlgorithm(req.Algorithm)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result := driver.Run(runCtx, req, views)
	result.ExecutionTime = time.Since(start)
	result.OptimizationID = req.ID
	result.Algorithm = req.Algorithm
	return result, nil
}

func validate(req domain.OptimizationRequest, views []domain.TrainsetView) error {
	if len(views) == 0 {
		return domain.ErrEmptyFleet
	}
	if req.MaxPositions <= 0 {
		return domain.ErrInvalidPositionCap
	}
	if req.MaxPositions > MaxPositionCeiling {
		return domain.ErrInvalidPositionCap
	}
	if req.TimeoutSeconds < 5 || req.TimeoutSeconds > 300 {
		return fmt.Errorf("optimizer: timeout_seconds out of range [5,300]")
	}
	return nil
}

// eligiblePool filters to the trainsets the feasibility predicate admits at
// all. Infeasible candidates are filtered before a candidate pool exists,
// never scored into submission afterward.
func eligiblePool(views []domain.TrainsetView, c domain.OptimizationConstraints) []domain.TrainsetView {
	out := make([]domain.TrainsetView, 0, len(views))
	for _, v := range views {
		if scoring.Feasible(v, c) {
			out = append(out, v)
		}
	}
	return out
}

func fleetMean(views []domain.TrainsetView) float64 {
	return scoring.FleetMeanMileage(views)
}
