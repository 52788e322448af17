package optimizer

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/scoring"
)

const (
	defaultPopulationSize = 100
	defaultGenerations    = 1000
	defaultMutationRate   = 0.1
	defaultEliteFraction  = 0.1
	assignProbability     = 0.7
	topParentFraction     = 0.2
)

// PopulationDriver is the genetic-algorithm driver: elite retention,
// crossover of top-ranked parents, low-probability repositioning mutation.
type PopulationDriver struct{}

func (PopulationDriver) Run(ctx context.Context, req domain.OptimizationRequest, views []domain.TrainsetView) domain.OptimizationResult {
	pool := eligiblePool(views, req.Constraints)
	if len(pool) == 0 {
		return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "no feasible trainsets"}
	}

	popSize := paramInt(req.Parameters, "population_size", defaultPopulationSize)
	generations := paramInt(req.Parameters, "generations", defaultGenerations)
	mutationRate := paramFloat(req.Parameters, "mutation_rate", defaultMutationRate)
	eliteSize := int(float64(popSize) * defaultEliteFraction)
	if eliteSize < 1 {
		eliteSize = 1
	}

	positions := req.MaxPositions
	mean := fleetMean(views)
	c := req.Constraints
	rng := newRNG(req.Seed)

	population := make([]domain.Assignment, popSize)
	for i := range population {
		population[i] = randomAssignment(pool, positions, rng)
	}

	viewByID := viewsByID(views)
	var best domain.Assignment
	bestScore := -1.0

	for gen := 0; gen < generations; gen++ {
		if ctx.Err() != nil {
			break
		}

		scored := scorePopulation(population, viewByID, mean, c)
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

		if scored[0].score > bestScore {
			bestScore = scored[0].score
			best = scored[0].assignment.Clone()
		}

		if ctx.Err() != nil {
			break
		}

		next := make([]domain.Assignment, 0, popSize)
		for i := 0; i < eliteSize && i < len(scored); i++ {
			next = append(next, scored[i].assignment.Clone())
		}

		topCut := int(float64(len(scored)) * topParentFraction)
		if topCut < 2 {
			topCut = min2(2, len(scored))
		}

		for len(next) < popSize {
			p1 := scored[rng.IntN(topCut)].assignment
			p2 := scored[rng.IntN(topCut)].assignment
			child := crossover(p1, p2, rng)
			if rng.Float64() < mutationRate {
				mutate(child, pool, positions, rng)
			}
			next = append(next, child)
		}
		population = next
	}

	if best == nil {
		return domain.OptimizationResult{Status: domain.StatusFailed, FailureReason: "no candidate evaluated"}
	}

	return domain.OptimizationResult{
		Status:     domain.StatusCompleted,
		Assignment: best,
		Score:      bestScore,
		Reasoning:  reasoningFor(viewByID, best, mean),
	}
}

type scoredAssignment struct {
	assignment domain.Assignment
	score      float64
}

func scorePopulation(pop []domain.Assignment, views map[string]domain.TrainsetView, mean float64, c domain.OptimizationConstraints) []scoredAssignment {
	out := make([]scoredAssignment, len(pop))
	for i, a := range pop {
		out[i] = scoredAssignment{assignment: a, score: scoring.TotalScore(views, a, mean, c)}
	}
	return out
}

// randomAssignment builds a partial injective map: each eligible trainset is
// assigned with probability 0.7 to a uniformly random still-free position.
func randomAssignment(pool []domain.TrainsetView, positions int, rng *rand.Rand) domain.Assignment {
	free := make([]int, positions)
	for i := range free {
		free[i] = i
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	a := domain.Assignment{}
	idx := 0
	order := rng.Perm(len(pool))
	for _, pi := range order {
		if idx >= len(free) {
			break
		}
		if rng.Float64() < assignProbability {
			a[pool[pi].ID] = free[idx]
			idx++
		}
	}
	return a
}

// crossover builds a child: for each trainset present in either parent, it
// inherits that trainset's position from parent1 with probability 0.5 else
// from parent2, skipping conflicting positions.
func crossover(p1, p2 domain.Assignment, rng *rand.Rand) domain.Assignment {
	child := domain.Assignment{}
	used := map[int]bool{}

	ids := map[string]bool{}
	for id := range p1 {
		ids[id] = true
	}
	for id := range p2 {
		ids[id] = true
	}

	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)
	rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })

	for _, id := range ordered {
		var pos int
		var ok bool
		if rng.Float64() < 0.5 {
			pos, ok = p1[id]
			if !ok {
				pos, ok = p2[id]
			}
		} else {
			pos, ok = p2[id]
			if !ok {
				pos, ok = p1[id]
			}
		}
		if !ok || used[pos] {
			continue
		}
		child[id] = pos
		used[pos] = true
	}
	return child
}

// mutate repositions one assigned trainset to a random free slot.
func mutate(a domain.Assignment, pool []domain.TrainsetView, positions int, rng *rand.Rand) {
	if len(a) == 0 {
		return
	}
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	victim := ids[rng.IntN(len(ids))]

	used := a.Positions()
	freeSlots := make([]int, 0, positions)
	for p := 0; p < positions; p++ {
		if !used[p] {
			freeSlots = append(freeSlots, p)
		}
	}
	if len(freeSlots) == 0 {
		return
	}
	a[victim] = freeSlots[rng.IntN(len(freeSlots))]
}

func newRNG(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func paramInt(params map[string]float64, key string, def int) int {
	if v, ok := params[key]; ok {
		return int(v)
	}
	return def
}

func paramFloat(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
