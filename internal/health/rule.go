package health

import (
	"github.com/kmra/induction/internal/domain"
)

// RuleConfidence is the fixed confidence the rule back-end reports.
const RuleConfidence = 0.6

// RuleAssessor is the always-available, threshold-based back-end.
type RuleAssessor struct{}

// Assess produces one HealthPrediction per component in domain.Components,
// sorted by urgency descending, from the latest telemetry sample.
func (RuleAssessor) Assess(trainsetID string, sample domain.TelemetrySample) []domain.HealthPrediction {
	preds := make([]domain.HealthPrediction, 0, len(domain.Components))
	for _, comp := range domain.Components {
		preds = append(preds, ruleComponentPrediction(trainsetID, comp, sample))
	}
	sortByUrgencyDesc(preds)
	return preds
}

func ruleComponentPrediction(trainsetID string, comp domain.Component, sample domain.TelemetrySample) domain.HealthPrediction {
	status := domain.HealthExcellent
	urgency := 0.0
	action := "no action required"
	rul := 90

	switch comp {
	case domain.ComponentEngine:
		switch {
		case sample.EngineTemperature > 90:
			status, urgency, action, rul = domain.HealthPoor, 0.8, "inspect engine cooling system", 7
		case sample.EngineTemperature > 80:
			status, urgency, action, rul = domain.HealthFair, 0.5, "monitor engine temperature", 14
		}
	case domain.ComponentBrakes:
		if sample.BrakePressure < 0.7 {
			status, urgency, action, rul = domain.HealthPoor, 0.9, "service brake system", 3
		}
	case domain.ComponentBattery:
		switch {
		case sample.BatteryVoltage < 11.5:
			status, urgency, action, rul = domain.HealthCritical, 1.0, "replace battery immediately", 1
		case sample.BatteryVoltage < 12.0:
			status, urgency, action, rul = domain.HealthPoor, 0.7, "schedule battery replacement", 5
		}
	}

	if sample.FailureCodeFor(comp) {
		status, urgency, action = domain.HealthCritical, 1.0, "investigate active failure code"
		if rul > 2 {
			rul = 2
		}
	}

	return domain.HealthPrediction{
		TrainsetID:          trainsetID,
		Component:           comp,
		RemainingUsefulLife: rul,
		Status:              status,
		Urgency:             urgency,
		Confidence:          RuleConfidence,
		RecommendedAction:   action,
	}
}

func sortByUrgencyDesc(preds []domain.HealthPrediction) {
	for i := 1; i < len(preds); i++ {
		for j := i; j > 0 && preds[j].Urgency > preds[j-1].Urgency; j-- {
			preds[j], preds[j-1] = preds[j-1], preds[j]
		}
	}
}
