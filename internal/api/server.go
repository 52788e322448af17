// Package api provides the induction system's ambient HTTP surface:
// liveness, Prometheus metrics, a snapshot status endpoint, and
// the telemetry intake the event-driven ingestor listens on. The
// business HTTP surface (schedule approval, decision management, fleet
// editing) is out of scope.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmra/induction/internal/domain"
)

// StatusProvider is the narrow read surface the server needs from
// internal/daemon.Service. Defining it here (rather than importing the
// daemon package) keeps api dependency-free of the wiring layer — daemon
// depends on api, not the reverse.
type StatusProvider interface {
	ActiveDecisionCount() int
	LastScheduleConfidence() (float64, bool)
	OptimizerQueueDepth() int
	OptimizerActiveCount() int
	LoopHealth() map[string]time.Time
}

// TelemetryIngestor accepts one telemetry sample for analysis and
// persistence; internal/daemon.Service implements it.
type TelemetryIngestor interface {
	IngestTelemetry(ctx context.Context, sample domain.TelemetrySample) error
}

// Server is the induction system's ambient HTTP API server.
type Server struct {
	status         StatusProvider
	ingest         TelemetryIngestor
	metricsEnabled bool
}

// NewServer creates a new API server over the given status provider.
func NewServer(status StatusProvider) *Server {
	return &Server{status: status}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// EnableTelemetryIngest mounts POST /api/telemetry over the given ingestor.
func (s *Server) EnableTelemetryIngest(ingest TelemetryIngestor) { s.ingest = ingest }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)

	if s.ingest != nil {
		r.Post("/api/telemetry", s.handleTelemetry)
	}
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleTelemetry accepts one JSON-encoded telemetry sample and feeds it to
// the ingestor.
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var sample domain.TelemetrySample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid telemetry payload: " + err.Error()})
		return
	}
	if sample.TrainsetID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "trainset id is required"})
		return
	}
	if err := s.ingest.IngestTelemetry(r.Context(), sample); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"status": "accepted"})
}

// handleHealth reports liveness plus each cooperative loop's last-tick age.
// A loop that has never ticked reports a nil age rather than a
// huge one, since "never ticked yet" and "stuck" read very differently to
// an operator.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loops := map[string]interface{}{}
	now := time.Now()
	for name, last := range s.status.LoopHealth() {
		if last.IsZero() {
			loops[name] = nil
			continue
		}
		loops[name] = now.Sub(last).Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"loops":  loops,
	})
}

// handleStatus reports the operational snapshot: active
// decision count, last schedule confidence, and optimizer queue depth.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"active_decisions":        s.status.ActiveDecisionCount(),
		"optimizer_queue_depth":   s.status.OptimizerQueueDepth(),
		"optimizer_active_count":  s.status.OptimizerActiveCount(),
	}
	if confidence, ok := s.status.LastScheduleConfidence(); ok {
		body["last_schedule_confidence"] = confidence
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// corsMiddleware adds permissive CORS headers for local dashboards.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
