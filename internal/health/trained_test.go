package health

import (
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

func telemetrySeries(n int, base domain.TelemetrySample) []domain.TelemetrySample {
	out := make([]domain.TelemetrySample, n)
	for i := 0; i < n; i++ {
		s := base
		s.Timestamp = base.Timestamp.Add(time.Duration(i) * time.Hour)
		out[i] = s
	}
	return out
}

func TestTrainedAssessorBelowMinSamplesReturnsNil(t *testing.T) {
	a := NewTrainedAssessor()
	samples := telemetrySeries(2, domain.TelemetrySample{TrainsetID: "T1"})
	if preds := a.Assess("T1", samples); preds != nil {
		t.Fatalf("expected nil below MinSamplesForAnalysis, got %v", preds)
	}
}

func TestTrainedAssessorFallsBackToRuleWhenUnfitted(t *testing.T) {
	a := NewTrainedAssessor()
	samples := telemetrySeries(6, domain.TelemetrySample{TrainsetID: "T1", EngineTemperature: 95})
	preds := a.Assess("T1", samples)
	if len(preds) != len(domain.Components) {
		t.Fatalf("got %d predictions, want %d", len(preds), len(domain.Components))
	}
	for _, p := range preds {
		if p.Component == domain.ComponentEngine && p.Status != domain.HealthPoor {
			t.Fatalf("engine status = %v, want poor (rule fallback)", p.Status)
		}
	}
}

func TestHealthStatusFromTripleCuts(t *testing.T) {
	cases := []struct {
		name      string
		prob      float64
		rul       int
		isOutlier bool
		want      domain.HealthStatus
	}{
		{"outlier forces critical", 0.01, 60, true, domain.HealthCritical},
		{"high prob critical", 0.85, 60, false, domain.HealthCritical},
		{"low rul critical", 0.01, 2, false, domain.HealthCritical},
		{"poor by prob", 0.65, 60, false, domain.HealthPoor},
		{"poor by rul", 0.01, 7, false, domain.HealthPoor},
		{"fair by prob", 0.45, 60, false, domain.HealthFair},
		{"good by prob", 0.25, 60, false, domain.HealthGood},
		{"excellent", 0.01, 60, false, domain.HealthExcellent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := healthStatusFromTriple(tc.prob, tc.rul, tc.isOutlier)
			if got != tc.want {
				t.Fatalf("healthStatusFromTriple(%v,%v,%v) = %v, want %v", tc.prob, tc.rul, tc.isOutlier, got, tc.want)
			}
		})
	}
}

func TestUrgencyScoreClamped(t *testing.T) {
	if u := urgencyScore(1.0, 1, -1); u > 1 || u < 0 {
		t.Fatalf("urgency out of [0,1]: %v", u)
	}
	if u := urgencyScore(0, 90, 0); u < 0 {
		t.Fatalf("urgency out of [0,1]: %v", u)
	}
}

func TestTrainedAssessorFittedModelPredicts(t *testing.T) {
	a := NewTrainedAssessor()
	a.Models[domain.ComponentEngine] = ComponentModel{
		Fitted:           true,
		FailureIntercept: -5,
		FailureWeights:   map[string]float64{"engine_temperature": 0.1},
		RULIntercept:     90,
		RULWeights:       map[string]float64{"engine_temperature": -1},
	}
	samples := telemetrySeries(6, domain.TelemetrySample{TrainsetID: "T1", EngineTemperature: 95})
	preds := a.Assess("T1", samples)
	found := false
	for _, p := range preds {
		if p.Component == domain.ComponentEngine {
			found = true
			if p.Confidence != 0.85 {
				t.Fatalf("confidence = %v, want 0.85 for fitted model", p.Confidence)
			}
		}
	}
	if !found {
		t.Fatal("expected an engine prediction")
	}
}
