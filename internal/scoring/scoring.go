// Package scoring implements the feasibility predicate and scoring function
// shared by every internal/optimizer driver. Both are pure and
// deterministic for a fixed fleet snapshot — this purity is what lets three
// very different algorithms share one objective without drift.
package scoring

import (
	"math"

	"github.com/kmra/induction/internal/domain"
)

// Feasible reports whether a trainset may occupy any position, independent
// of which position: fitness certificate valid, no open high-priority
// work order, status available, and — when invoked with a health view
// attached — health not critical or poor.
func Feasible(t domain.TrainsetView, c domain.OptimizationConstraints) bool {
	if c.RequireValidFitness && !t.FitnessValid {
		return false
	}
	if c.ExcludeHighPriorityJobs && t.HighPriorityWork {
		return false
	}
	if t.Status != domain.StatusAvailable {
		return false
	}
	if t.Health == domain.HealthCritical || t.Health == domain.HealthPoor {
		return false
	}
	return true
}

// Score returns the per-pair contribution of assigning trainset t to
// position (0-indexed) given the fleet's mean mileage and constraints.
func Score(t domain.TrainsetView, position int, fleetMeanMileage float64, c domain.OptimizationConstraints) float64 {
	score := 100.0

	if t.FitnessValid {
		score += 50
	} else {
		score -= 1000
	}

	score += balanceTerm(t.CurrentMileage, fleetMeanMileage) * c.MileageBalanceWeight
	score += float64(t.BrandingPriority) * 20 * c.BrandingWeight
	score += positionTerm(position) * positionWeight(c)

	return score
}

// balanceTerm rewards mileage near the fleet mean. When the fleet mean is
// 0 the term is the constant 0.5 rather than a division.
func balanceTerm(mileage, fleetMean float64) float64 {
	if fleetMean == 0 {
		return 0.5
	}
	return math.Max(0, 100-math.Abs(mileage-fleetMean)/1000)
}

func positionTerm(position int) float64 {
	return math.Max(0, 50-2*float64(position))
}

// positionWeight scales the position term when the constraints' weight is
// set to something other than the default 1.0.
func positionWeight(c domain.OptimizationConstraints) float64 {
	if c.PositionPreferenceWeight == 0 {
		return 1.0
	}
	return c.PositionPreferenceWeight
}

// IntrinsicScore is the per-trainset contribution excluding the
// position-dependent term — used by the exact driver to rank trainsets
// before pairing them with positions.
func IntrinsicScore(t domain.TrainsetView, fleetMeanMileage float64, c domain.OptimizationConstraints) float64 {
	return Score(t, 0, fleetMeanMileage, c) - positionTerm(0)*positionWeight(c)
}

// TotalScore sums the per-pair contribution over an entire assignment.
func TotalScore(views map[string]domain.TrainsetView, a domain.Assignment, fleetMeanMileage float64, c domain.OptimizationConstraints) float64 {
	total := 0.0
	for id, pos := range a {
		if v, ok := views[id]; ok {
			total += Score(v, pos, fleetMeanMileage, c)
		}
	}
	return total
}

// FleetMeanMileage computes the arithmetic mean of current mileage across a
// set of trainsets.
func FleetMeanMileage(views []domain.TrainsetView) float64 {
	if len(views) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range views {
		sum += v.CurrentMileage
	}
	return sum / float64(len(views))
}

// Mean returns the arithmetic mean of a sequence of reals, 0 for an empty
// sequence.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of a sequence of reals.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// ArgMax returns the index of the largest value, -1 for an empty sequence.
func ArgMax(xs []float64) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
