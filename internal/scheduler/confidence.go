package scheduler

import "github.com/kmra/induction/internal/domain"

// Confidence composition weights.
const (
	weightOptimizationQuality = 0.25
	weightDataCompleteness    = 0.15
	weightAlgorithmReliability = 0.10
	weightMeanPerformance     = 0.30
	weightInverseRisk         = 0.20
)

// algorithmReliability is 0.9 for the exact driver, 0.8 otherwise.
func algorithmReliability(a domain.Algorithm) float64 {
	if a == domain.AlgorithmExact {
		return 0.9
	}
	return 0.8
}

// dataCompleteness is min(1, eligibleCount/10).
func dataCompleteness(eligibleCount int) float64 {
	v := float64(eligibleCount) / 10.0
	if v > 1 {
		return 1
	}
	return v
}

// meanOf returns the arithmetic mean of a map's values, 0 for an empty map.
func meanOf(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}

// composeConfidence is the weighted-sum confidence composition.
// riskAssessment's "overall" entry is already the mean of the other four
// — used directly here rather than re-averaged across all five
// entries, which would double-count it.
func composeConfidence(optimizationQuality float64, eligibleCount int, algo domain.Algorithm, performanceMetrics, riskAssessment map[string]float64) float64 {
	overallRisk := riskAssessment["overall"]
	return weightOptimizationQuality*optimizationQuality +
		weightDataCompleteness*dataCompleteness(eligibleCount) +
		weightAlgorithmReliability*algorithmReliability(algo) +
		weightMeanPerformance*meanOf(performanceMetrics) +
		weightInverseRisk*(1-overallRisk)
}
