package health

import (
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

func TestTelemetryStoreEvictsBeyondRetention(t *testing.T) {
	s := NewTelemetryStore()
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Ingest(domain.TelemetrySample{TrainsetID: "T1", Timestamp: old})
	recent := old.Add(RetentionWindow + time.Hour)
	s.Ingest(domain.TelemetrySample{TrainsetID: "T1", Timestamp: recent})

	got := s.Recent("T1")
	if len(got) != 1 {
		t.Fatalf("got %d samples, want 1 (old one evicted)", len(got))
	}
	if !got[0].Timestamp.Equal(recent) {
		t.Fatalf("kept sample timestamp = %v, want %v", got[0].Timestamp, recent)
	}
}

func TestTelemetryStoreRecentBoundedByAnalysisWindow(t *testing.T) {
	s := NewTelemetryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < AnalysisWindow+10; i++ {
		s.Ingest(domain.TelemetrySample{TrainsetID: "T1", Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	got := s.Recent("T1")
	if len(got) != AnalysisWindow {
		t.Fatalf("got %d samples, want %d", len(got), AnalysisWindow)
	}
	// oldest-first: the last element should be the most recently ingested
	last := got[len(got)-1]
	want := base.Add(time.Duration(AnalysisWindow+9) * time.Minute)
	if !last.Timestamp.Equal(want) {
		t.Fatalf("last sample timestamp = %v, want %v", last.Timestamp, want)
	}
}

func TestTelemetryStoreLatest(t *testing.T) {
	s := NewTelemetryStore()
	if _, ok := s.Latest("missing"); ok {
		t.Fatal("expected no sample for unknown trainset")
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Ingest(domain.TelemetrySample{TrainsetID: "T1", Timestamp: base, EngineTemperature: 70})
	s.Ingest(domain.TelemetrySample{TrainsetID: "T1", Timestamp: base.Add(time.Hour), EngineTemperature: 75})
	latest, ok := s.Latest("T1")
	if !ok || latest.EngineTemperature != 75 {
		t.Fatalf("latest = %+v, ok=%v, want EngineTemperature 75", latest, ok)
	}
}

func TestCompositeAssessorFallsBackBelowMinSamples(t *testing.T) {
	c := NewCompositeAssessor()
	samples := []domain.TelemetrySample{{TrainsetID: "T1", EngineTemperature: 95}}
	preds := c.AssessTrainset("T1", samples)
	if len(preds) != len(domain.Components) {
		t.Fatalf("got %d predictions, want %d", len(preds), len(domain.Components))
	}
}

func TestCompositeAssessorEmptyHistory(t *testing.T) {
	c := NewCompositeAssessor()
	if preds := c.AssessTrainset("T1", nil); preds != nil {
		t.Fatalf("expected nil for empty history, got %v", preds)
	}
}

func TestWorstStatusAndUrgency(t *testing.T) {
	preds := []domain.HealthPrediction{
		{Component: domain.ComponentEngine, Status: domain.HealthFair, Urgency: 0.4},
		{Component: domain.ComponentBattery, Status: domain.HealthCritical, Urgency: 0.9},
	}
	if got := WorstStatus(preds); got != domain.HealthCritical {
		t.Fatalf("WorstStatus = %v, want critical", got)
	}
	if got := WorstUrgency(preds); got != 0.9 {
		t.Fatalf("WorstUrgency = %v, want 0.9", got)
	}
}
