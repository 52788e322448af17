package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kmra/induction/internal/domain"
)

type fakeStatus struct {
	confidence float64
	hasSched   bool
}

func (f fakeStatus) ActiveDecisionCount() int                  { return 2 }
func (f fakeStatus) LastScheduleConfidence() (float64, bool)   { return f.confidence, f.hasSched }
func (f fakeStatus) OptimizerQueueDepth() int                  { return 1 }
func (f fakeStatus) OptimizerActiveCount() int                 { return 1 }
func (f fakeStatus) LoopHealth() map[string]time.Time {
	return map[string]time.Time{"decision_evaluator": time.Now(), "scheduler_scheduling": {}}
}

type fakeIngestor struct {
	samples []domain.TelemetrySample
}

func (f *fakeIngestor) IngestTelemetry(ctx context.Context, sample domain.TelemetrySample) error {
	f.samples = append(f.samples, sample)
	return nil
}

func TestHealthReportsLoops(t *testing.T) {
	srv := NewServer(fakeStatus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	loops, ok := body["loops"].(map[string]interface{})
	if !ok {
		t.Fatalf("no loops map in %v", body)
	}
	// A loop that has never ticked reports null, not a huge age.
	if v, present := loops["scheduler_scheduling"]; !present || v != nil {
		t.Fatalf("never-ticked loop = %v, want null", v)
	}
}

func TestStatusIncludesConfidenceOnlyWhenPresent(t *testing.T) {
	srv := NewServer(fakeStatus{confidence: 0.82, hasSched: true})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if _, ok := body["last_schedule_confidence"]; !ok {
		t.Fatal("expected last_schedule_confidence in body")
	}

	srv2 := NewServer(fakeStatus{hasSched: false})
	rec2 := httptest.NewRecorder()
	srv2.Handler().ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var body2 map[string]interface{}
	if err := json.Unmarshal(rec2.Body.Bytes(), &body2); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if _, ok := body2["last_schedule_confidence"]; ok {
		t.Fatal("confidence should be absent before any schedule is generated")
	}
}

func TestTelemetryIngestEndpoint(t *testing.T) {
	ingest := &fakeIngestor{}
	srv := NewServer(fakeStatus{})
	srv.EnableTelemetryIngest(ingest)

	payload := `{"TrainsetID":"T1","EngineTemperature":85.5}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/telemetry", strings.NewReader(payload)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body: %s", rec.Code, rec.Body.String())
	}
	if len(ingest.samples) != 1 || ingest.samples[0].TrainsetID != "T1" {
		t.Fatalf("ingested = %+v, want one T1 sample", ingest.samples)
	}
}

func TestTelemetryIngestRejectsBadPayload(t *testing.T) {
	srv := NewServer(fakeStatus{})
	srv.EnableTelemetryIngest(&fakeIngestor{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/telemetry", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/telemetry", strings.NewReader(`{"EngineTemperature":80}`)))
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing trainset id", rec2.Code)
	}
}

func TestTelemetryEndpointAbsentWithoutIngestor(t *testing.T) {
	srv := NewServer(fakeStatus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/telemetry", strings.NewReader("{}")))
	if rec.Code == http.StatusAccepted {
		t.Fatal("telemetry endpoint should not be mounted without an ingestor")
	}
}
