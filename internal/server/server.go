// Package server exposes the session state to the rest of the application
// over a local HTTP API. Handlers only read snapshots and trigger session
// operations; they never surface session internals or Go errors.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/backend"
	"github.com/HerbHall/netglance/internal/metrics"
	"github.com/HerbHall/netglance/internal/monitor"
	"github.com/HerbHall/netglance/internal/scan"
	"github.com/HerbHall/netglance/internal/version"
)

// Server is the netglance HTTP API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *zap.Logger

	scan    *scan.Session
	monitor *monitor.Session
	metrics *metrics.Metrics
}

// New creates a Server bound to the shared session singletons.
func New(addr string, scanSession *scan.Session, monitorSession *monitor.Session, m *metrics.Metrics, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:     mux,
		logger:  logger,
		scan:    scanSession,
		monitor: monitorSession,
		metrics: m,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/scan", s.handleScanSnapshot)
	s.mux.HandleFunc("POST /api/v1/scan", s.handleScanStart)
	s.mux.HandleFunc("DELETE /api/v1/scan", s.handleScanStop)

	s.mux.HandleFunc("GET /api/v1/monitoring/status", s.handleMonitoringStatus)
	s.mux.HandleFunc("POST /api/v1/monitoring/start", s.handleMonitoringStart)
	s.mux.HandleFunc("POST /api/v1/monitoring/stop", s.handleMonitoringStop)
	s.mux.HandleFunc("GET /api/v1/monitoring/events", s.handleMonitoringEvents)
	s.mux.HandleFunc("DELETE /api/v1/monitoring/events", s.handleMonitoringClearEvents)

	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving HTTP requests and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "netglance",
		"version": version.Map(),
	})
}

// handleScanSnapshot returns the current scan session state.
//
//	@Summary		Scan snapshot
//	@Description	Returns the scan session state: status, last result, last error.
//	@Tags			scan
//	@Produce		json
//	@Success		200 {object} scan.Snapshot
//	@Router			/scan [get]
func (s *Server) handleScanSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scan.Snapshot())
}

// handleScanStart triggers a scan. Calling while a scan is running is a
// no-op; either way the post-trigger snapshot is returned.
//
//	@Summary		Start scan
//	@Tags			scan
//	@Produce		json
//	@Success		202 {object} scan.Snapshot
//	@Router			/scan [post]
func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	s.scan.Scan(r.Context())
	writeJSON(w, http.StatusAccepted, s.scan.Snapshot())
}

// handleScanStop supersedes the active scan request, if any.
//
//	@Summary		Stop scan
//	@Tags			scan
//	@Produce		json
//	@Success		200 {object} scan.Snapshot
//	@Router			/scan [delete]
func (s *Server) handleScanStop(w http.ResponseWriter, r *http.Request) {
	s.scan.StopScan()
	writeJSON(w, http.StatusOK, s.scan.Snapshot())
}

// monitoringView is the combined monitoring state returned by the API.
type monitoringView struct {
	Status   backend.Status   `json:"status"`
	Progress monitor.Progress `json:"progress"`
	Error    string           `json:"error,omitempty"`
	Loading  bool             `json:"loading"`
}

func (s *Server) monitoringView() monitoringView {
	return monitoringView{
		Status:   s.monitor.Status(),
		Progress: s.monitor.Progress(),
		Error:    s.monitor.Error(),
		Loading:  s.monitor.Loading(),
	}
}

// handleMonitoringStatus returns aggregate status plus derived progress.
//
//	@Summary		Monitoring status
//	@Tags			monitoring
//	@Produce		json
//	@Success		200 {object} monitoringView
//	@Router			/monitoring/status [get]
func (s *Server) handleMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoringView())
}

type startMonitoringRequest struct {
	IntervalSeconds int `json:"interval_seconds,omitempty"`
}

// handleMonitoringStart starts the backend monitoring loop. Errors from
// the backend land in the view's error field, not in the HTTP status.
//
//	@Summary		Start monitoring
//	@Tags			monitoring
//	@Accept			json
//	@Produce		json
//	@Param			body body startMonitoringRequest false "Optional interval override"
//	@Success		200 {object} monitoringView
//	@Failure		400 {object} map[string]any
//	@Router			/monitoring/start [post]
func (s *Server) handleMonitoringStart(w http.ResponseWriter, r *http.Request) {
	var req startMonitoringRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.IntervalSeconds < 0 {
		writeError(w, http.StatusBadRequest, "interval_seconds must not be negative")
		return
	}

	s.monitor.Start(r.Context(), req.IntervalSeconds)
	writeJSON(w, http.StatusOK, s.monitoringView())
}

// handleMonitoringStop stops the backend monitoring loop.
//
//	@Summary		Stop monitoring
//	@Tags			monitoring
//	@Produce		json
//	@Success		200 {object} monitoringView
//	@Router			/monitoring/stop [post]
func (s *Server) handleMonitoringStop(w http.ResponseWriter, r *http.Request) {
	s.monitor.Stop(r.Context())
	writeJSON(w, http.StatusOK, s.monitoringView())
}

// handleMonitoringEvents returns the activity history, newest first.
//
//	@Summary		Monitoring events
//	@Tags			monitoring
//	@Produce		json
//	@Success		200 {array} monitor.Entry
//	@Router			/monitoring/events [get]
func (s *Server) handleMonitoringEvents(w http.ResponseWriter, r *http.Request) {
	events := s.monitor.Events()
	if events == nil {
		events = []monitor.Entry{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleMonitoringClearEvents empties the activity history.
//
//	@Summary		Clear monitoring events
//	@Tags			monitoring
//	@Success		204
//	@Router			/monitoring/events [delete]
func (s *Server) handleMonitoringClearEvents(w http.ResponseWriter, r *http.Request) {
	s.monitor.ClearEvents()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
