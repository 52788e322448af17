package collab

import (
	"context"

	"github.com/kmra/induction/internal/domain"
)

// StaticPredictor is a domain.Predictor standing in for the real ML
// success-probability service. It composes a deterministic estimate
// from the same feature keys the schedule-optimization rule sends
// (mileage_balance, energy_efficiency, maintenance_score), falling back to
// the documented defaults (mileage_balance 0.5, performance std 0.1) for any
// key a caller omits.
type StaticPredictor struct{}

func (StaticPredictor) Predict(ctx context.Context, features map[string]float64) (domain.PredictionResult, error) {
	mileageBalance := valueOr(features, "mileage_balance", 0.5)
	energyEfficiency := valueOr(features, "energy_efficiency", 0.5)
	maintenanceScore := valueOr(features, "maintenance_score", 0.5)
	performanceStd := valueOr(features, "performance_std", 0.1)

	success := 0.4*mileageBalance + 0.3*energyEfficiency + 0.3*maintenanceScore
	success -= performanceStd
	if success < 0 {
		success = 0
	}
	if success > 1 {
		success = 1
	}

	return domain.PredictionResult{
		SuccessProbability: success,
		MaintenanceHours:   (1 - maintenanceScore) * 48,
		EnergyConsumption:  (1 - energyEfficiency) * 500,
	}, nil
}

func valueOr(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
