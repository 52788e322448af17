package optimizer

import (
	"context"
	"sort"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/scoring"
)

// ExactDriver models the assignment as boolean variables x[i,j] per
// (trainset i, position j) with per-trainset and per-position constraints.
// Because the position term is trainset-independent and strictly
// decreasing in position index, the optimum decomposes: select the
// min(|eligible|, P') highest-intrinsic-score trainsets, then pair them with
// positions 0..k-1 in decreasing score order (rearrangement inequality) —
// this is the closed-form optimum of the linear program, computed directly
// rather than via a generic ILP solve loop.
type ExactDriver struct{}

func (ExactDriver) Run(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) domain.OptimizationResult {
	pool := eligiblePool(views, req.Constraints)
	if len(pool) == 0 {
		return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "no feasible trainsets"}
	}

	select {
	case <-ctx.Done():
		return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "timed out"}
	default:
	}

	mean := fleetMean(views)
	c := req.Constraints

	type scoredView struct {
		view      domain.TrainsetView
		intrinsic float64
	}
	scoredPool := make([]scoredView, len(pool))
	for i, v := range pool {
		scoredPool[i] = scoredView{view: v, intrinsic: scoring.IntrinsicScore(v, mean, c)}
	}
	sort.SliceStable(scoredPool, func(i, j int) bool {
		return scoredPool[i].intrinsic > scoredPool[j].intrinsic
	})

	k := req.MaxPositions
	if k > len(scoredPool) {
		k = len(scoredPool)
	}

	assignment := make(domain.Assignment, k)
	for pos := 0; pos < k; pos++ {
		assignment[scoredPool[pos].view.ID] = pos
	}

	views2 := viewsByID(views)
	total := scoring.TotalScore(views2, assignment, mean, c)

	return domain.OptimizationResult{
		Status:     domain.StatusCompleted,
		Assignment: assignment,
		Score:      total,
		Reasoning:  reasoningFor(views2, assignment, mean),
	}
}
