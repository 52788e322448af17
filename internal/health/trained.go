package health

import (
	"math"

	"github.com/kmra/induction/internal/domain"
)

// ComponentModel holds a fitted component's regressor coefficients. The
// core never fits these from raw data; they're supplied
// already-fitted via configuration or a model-store adapter.
type ComponentModel struct {
	Fitted bool

	FailureIntercept float64
	FailureWeights   map[string]float64 // feature name -> weight, logistic combination

	RULIntercept float64
	RULWeights   map[string]float64 // feature name -> weight, linear combination, days
}

func (m ComponentModel) predictFailureProbability(features map[string]float64) float64 {
	z := m.FailureIntercept
	for name, w := range m.FailureWeights {
		z += w * features[name]
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func (m ComponentModel) predictRUL(features map[string]float64) int {
	rul := m.RULIntercept
	for name, w := range m.RULWeights {
		rul += w * features[name]
	}
	if rul < 1 {
		rul = 1
	}
	return int(rul)
}

// TrainedAssessor is the optional, trained-regressor back-end. Falls back
// to RuleAssessor per-component when that component's model isn't fitted.
type TrainedAssessor struct {
	Models   map[domain.Component]ComponentModel
	Anomaly  *AnomalyDetector
	Fallback RuleAssessor
}

// NewTrainedAssessor constructs a trained back-end with an anomaly detector
// and no fitted models (every component falls back to rules until models
// are supplied).
func NewTrainedAssessor() *TrainedAssessor {
	return &TrainedAssessor{
		Models:  make(map[domain.Component]ComponentModel),
		Anomaly: NewAnomalyDetector(),
	}
}

// Assess requires at least MinSamplesForAnalysis samples; below that it
// returns nil: analysis requires a minimum history.
func (a *TrainedAssessor) Assess(trainsetID string, samples []domain.TelemetrySample) []domain.HealthPrediction {
	if len(samples) < MinSamplesForAnalysis {
		return nil
	}
	latest := samples[len(samples)-1]
	features := extractFeatures(latest)

	preds := make([]domain.HealthPrediction, 0, len(domain.Components))
	for _, comp := range domain.Components {
		model, ok := a.Models[comp]
		if !ok || !model.Fitted {
			preds = append(preds, ruleComponentPrediction(trainsetID, comp, latest))
			continue
		}

		prob := model.predictFailureProbability(features)
		rul := model.predictRUL(features)
		isOutlier, anomalyScore := a.Anomaly.Observe(trainsetID, string(comp), primaryFeature(comp, features))

		status := healthStatusFromTriple(prob, rul, isOutlier)
		urgency := urgencyScore(prob, rul, anomalyScore)

		preds = append(preds, domain.HealthPrediction{
			TrainsetID:          trainsetID,
			Component:           comp,
			RemainingUsefulLife: rul,
			Status:              status,
			Urgency:             urgency,
			Confidence:          0.85,
			RecommendedAction:   recommendedAction(status),
			RiskSubScores: map[string]float64{
				"failure_probability": prob,
				"anomaly_score":       anomalyScore,
			},
		})
	}
	sortByUrgencyDesc(preds)
	return preds
}

// healthStatusFromTriple derives a HealthStatus from (failure probability,
// RUL days, is-outlier).
func healthStatusFromTriple(prob float64, rul int, isOutlier bool) domain.HealthStatus {
	switch {
	case isOutlier || prob > 0.8 || rul <= 2:
		return domain.HealthCritical
	case prob > 0.6 || rul <= 7:
		return domain.HealthPoor
	case prob > 0.4 || rul <= 14:
		return domain.HealthFair
	case prob > 0.2 || rul <= 30:
		return domain.HealthGood
	default:
		return domain.HealthExcellent
	}
}

// urgencyScore weights failure probability, time pressure, and anomaly
// signal into one value clamped to [0,1].
func urgencyScore(prob float64, rul int, anomalyScore float64) float64 {
	timeScore := math.Max(0, 1-float64(rul)/30)
	anomalyFactor := math.Max(0, 1-math.Abs(anomalyScore)/2)
	u := 0.5*prob + 0.3*timeScore + 0.2*anomalyFactor
	if u > 1 {
		u = 1
	}
	if u < 0 {
		u = 0
	}
	return u
}

func recommendedAction(status domain.HealthStatus) string {
	switch status {
	case domain.HealthCritical:
		return "withdraw from service and inspect immediately"
	case domain.HealthPoor:
		return "schedule maintenance within days"
	case domain.HealthFair:
		return "monitor closely"
	default:
		return "no action required"
	}
}

func extractFeatures(s domain.TelemetrySample) map[string]float64 {
	return map[string]float64{
		"mileage":            s.Mileage,
		"engine_temperature": s.EngineTemperature,
		"brake_pressure":     s.BrakePressure,
		"hvac_efficiency":    s.HVACEfficiency,
		"battery_voltage":    s.BatteryVoltage,
		"vibration_level":    s.VibrationLevel,
		"noise_level":        s.NoiseLevel,
		"power_consumption":  s.PowerConsumption,
		"door_cycles":        float64(s.DoorCycles),
	}
}

// primaryFeature picks the scalar feature most diagnostic for a component's
// anomaly profile.
func primaryFeature(comp domain.Component, features map[string]float64) float64 {
	switch comp {
	case domain.ComponentEngine:
		return features["engine_temperature"]
	case domain.ComponentBrakes:
		return features["brake_pressure"]
	case domain.ComponentBattery:
		return features["battery_voltage"]
	case domain.ComponentHVAC:
		return features["hvac_efficiency"]
	case domain.ComponentDoors:
		return features["door_cycles"]
	default:
		return features["vibration_level"]
	}
}
