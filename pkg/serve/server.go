// Package serve exposes the scan engine over HTTP for callers that prefer a
// long-running service to shelling out per scan.
package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vigilsec/promptwall/pkg/scanner"
)

// Server handles scan requests over HTTP and exports Prometheus metrics.
type Server struct {
	engine        *scanner.Engine
	logger        *slog.Logger
	metrics       *metrics
	maxInputBytes int64
}

// Config for the scan service.
type Config struct {
	Engine *scanner.Engine
	Logger *slog.Logger

	// MaxInputBytes caps request bodies; zero means 1 MiB.
	MaxInputBytes int64
}

// New creates a Server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := cfg.MaxInputBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &Server{
		engine:        cfg.Engine,
		logger:        logger,
		metrics:       newMetrics(),
		maxInputBytes: maxBytes,
	}
}

// Handler returns the service mux: POST /scan, GET /healthz, GET /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// scanRequest is the POST /scan body.
type scanRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.maxInputBytes)
	var req scanRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	start := time.Now()
	rep, err := s.engine.Scan(r.Context(), req.Text)
	if err != nil {
		s.metrics.scanFailures.Inc()
		s.logger.Error("scan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.metrics.scanDuration.Observe(time.Since(start).Seconds())
	s.metrics.scannedBytes.Add(float64(len(req.Text)))
	s.metrics.scansTotal.WithLabelValues(string(rep.RiskBand)).Inc()
	s.logger.Info("scan completed",
		"risk_score", rep.RiskScore,
		"risk_band", rep.RiskBand,
		"findings", len(rep.Findings),
	)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
