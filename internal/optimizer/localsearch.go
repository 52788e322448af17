package optimizer

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/scoring"
)

const (
	defaultInitialTemp  = 100.0
	defaultCoolingRate  = 0.95
	defaultMinTemp      = 0.01
	defaultMaxIterations = 10000
)

// LocalSearchDriver is the simulated-annealing driver. The neighborhood is
// restricted to {swap, move}; add/remove operators buy nothing here because
// random initialization already assigns most of the feasible pool.
type LocalSearchDriver struct{}

func (LocalSearchDriver) Run(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) domain.OptimizationResult {
	pool := eligiblePool(views, req.Constraints)
	if len(pool) == 0 {
		return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "no feasible trainsets"}
	}

	positions := req.MaxPositions
	mean := fleetMean(views)
	c := req.Constraints
	rng := newRNG(req.Seed)
	viewByID := viewsByID(views)

	temp := paramFloat(req.Parameters, "initial_temperature", defaultInitialTemp)
	coolingRate := paramFloat(req.Parameters, "cooling_rate", defaultCoolingRate)
	minTemp := paramFloat(req.Parameters, "min_temperature", defaultMinTemp)
	maxIter := paramInt(req.Parameters, "max_iterations", defaultMaxIterations)

	current := randomAssignment(pool, positions, rng)
	currentScore := scoring.TotalScore(viewByID, current, mean, c)

	best := current.Clone()
	bestScore := currentScore

	for i := 0; i < maxIter && temp > minTemp; i++ {
		if ctx.Err() != nil {
			break
		}

		candidate := neighbor(current, pool, positions, rng)
		candidateScore := scoring.TotalScore(viewByID, candidate, mean, c)

		delta := candidateScore - currentScore
		if delta > 0 || rng.Float64() < math.Exp(delta/temp) {
			current = candidate
			currentScore = candidateScore
			if currentScore > bestScore {
				best = current.Clone()
				bestScore = currentScore
			}
		}

		temp *= coolingRate
	}

	return domain.OptimizationResult{
		Status:     domain.StatusCompleted,
		Assignment: best,
		Score:      bestScore,
		Reasoning:  reasoningFor(viewByID, best, mean),
	}
}

// neighbor chooses uniformly between swapping two assigned trainsets'
// positions and moving one assigned trainset to a free position.
func neighbor(a domain.Assignment, pool []domain.TrainsetView, positions int, rng *rand.Rand) domain.Assignment {
	next := a.Clone()
	if len(next) == 0 {
		return next
	}

	ids := make([]string, 0, len(next))
	for id := range next {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if rng.Float64() < 0.5 && len(ids) >= 2 {
		i := rng.IntN(len(ids))
		j := rng.IntN(len(ids))
		next[ids[i]], next[ids[j]] = next[ids[j]], next[ids[i]]
		return next
	}

	used := next.Positions()
	freeSlots := make([]int, 0, positions)
	for p := 0; p < positions; p++ {
		if !used[p] {
			freeSlots = append(freeSlots, p)
		}
	}
	if len(freeSlots) == 0 {
		return next
	}
	victim := ids[rng.IntN(len(ids))]
	next[victim] = freeSlots[rng.IntN(len(freeSlots))]
	return next
}
