package health

import (
	"github.com/kmra/induction/internal/domain"
)

// Assessor produces component health predictions for a trainset from its
// telemetry history.
type Assessor interface {
	AssessTrainset(trainsetID string, samples []domain.TelemetrySample) []domain.HealthPrediction
}

// CompositeAssessor is the Health Assessor's default wiring: the trained
// back-end when enough history exists, the rule back-end otherwise. The
// trained back-end itself falls back to rules per-component for any model
// that isn't fitted, so this composite only needs to gate on sample count.
type CompositeAssessor struct {
	Trained *TrainedAssessor
	Rule    RuleAssessor
}

// NewCompositeAssessor wires a fresh trained back-end (no fitted models
// until supplied) behind the always-available rule back-end.
func NewCompositeAssessor() *CompositeAssessor {
	return &CompositeAssessor{Trained: NewTrainedAssessor()}
}

// AssessTrainset implements Assessor. Below MinSamplesForAnalysis samples
// it falls back to the rule back-end against the latest sample, since the
// trained back-end declines to produce predictions at all in that regime.
func (c *CompositeAssessor) AssessTrainset(trainsetID string, samples []domain.TelemetrySample) []domain.HealthPrediction {
	if len(samples) == 0 {
		return nil
	}
	if len(samples) < MinSamplesForAnalysis {
		return c.Rule.Assess(trainsetID, samples[len(samples)-1])
	}
	return c.Trained.Assess(trainsetID, samples)
}

// WorstStatus returns the most severe HealthStatus among a set of
// predictions, used to decorate a TrainsetView's single summary health
// field.
func WorstStatus(preds []domain.HealthPrediction) domain.HealthStatus {
	worst := domain.HealthExcellent
	for _, p := range preds {
		if p.Status.Severity() > worst.Severity() {
			worst = p.Status
		}
	}
	return worst
}

// WorstUrgency returns the maximum urgency among a set of predictions.
func WorstUrgency(preds []domain.HealthPrediction) float64 {
	worst := 0.0
	for _, p := range preds {
		if p.Urgency > worst {
			worst = p.Urgency
		}
	}
	return worst
}
