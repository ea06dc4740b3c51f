// Package scan owns the single in-flight "run a scan" operation: its
// request identity, its cancellation semantics, and the resulting dataset.
package scan

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/backend"
	"github.com/HerbHall/netglance/internal/config"
	"github.com/HerbHall/netglance/internal/metrics"
	"github.com/HerbHall/netglance/pkg/models"
)

// Status is the externally visible state of the scan session.
type Status string

const (
	// StatusIdle means no scan is in flight. Also the "ready" state the
	// session settles back into after the post-success flash.
	StatusIdle Status = "idle"
	// StatusRunning means a scan request is in flight.
	StatusRunning Status = "running"
	// StatusSucceeded is the short-lived post-completion state that lets
	// the UI flash a "scan complete" indicator.
	StatusSucceeded Status = "succeeded"
)

// readyFlashDelay is how long the session stays in StatusSucceeded before
// settling back to idle.
const readyFlashDelay = time.Second

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Status          Status             `json:"status"`
	Result          *models.ScanResult `json:"result,omitempty"`
	Error           string             `json:"error,omitempty"`
	LastCompletedAt *time.Time         `json:"last_completed_at,omitempty"`
}

// Session is the process-wide scan state container. Construct exactly one
// at the composition root; a second instance would break the one-active-
// request invariant.
//
// The backend scan command is not cancellable. StopScan therefore only
// supersedes the active request id; a superseded completion is discarded
// without touching state.
type Session struct {
	backend backend.Commander
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	// flashDelay is readyFlashDelay in production, shortened in tests.
	flashDelay time.Duration

	mu              sync.Mutex
	status          Status
	result          *models.ScanResult
	errMsg          string
	lastCompletedAt *time.Time
	activeID        uint64
}

// New creates the scan session.
func New(cmd backend.Commander, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *Session {
	if m == nil {
		m = metrics.New()
	}
	return &Session{
		backend:    cmd,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		flashDelay: readyFlashDelay,
		status:     StatusIdle,
	}
}

// Scan issues one scan request. Calling while a scan is already running is
// a no-op, which guarantees at most one concurrent scan. Scan never fails
// from the caller's perspective; all outcomes land in the snapshot.
func (s *Session) Scan(ctx context.Context) {
	s.mu.Lock()
	if s.status == StatusRunning {
		s.mu.Unlock()
		s.logger.Debug("scan already running, request ignored")
		return
	}

	s.activeID++
	id := s.activeID
	s.status = StatusRunning
	s.errMsg = ""
	s.mu.Unlock()

	s.metrics.ScansStarted.Inc()

	// Demo mode is read at call time: the flag is persisted externally
	// and may change between scans.
	demo := s.cfg.DemoMode()

	// The request outlives the caller's context: the backend call is not
	// cancellable, and its completion must still reach the supersession
	// check to be discarded properly.
	go s.run(context.WithoutCancel(ctx), id, demo)
}

func (s *Session) run(ctx context.Context, id uint64, demo bool) {
	var (
		result *models.ScanResult
		err    error
	)
	if demo {
		result, err = s.backend.MockScanNetwork(ctx)
	} else {
		result, err = s.backend.ScanNetwork(ctx)
	}
	s.complete(id, result, err)
}

// complete applies one request's outcome, unless a newer request has been
// minted since - then the outcome is discarded silently.
func (s *Session) complete(id uint64, result *models.ScanResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.activeID {
		s.metrics.ScansSuperseded.Inc()
		s.logger.Debug("discarding superseded scan completion",
			zap.Uint64("request_id", id),
			zap.Uint64("active_id", s.activeID),
			zap.Bool("failed", err != nil),
		)
		return
	}

	if err != nil {
		s.status = StatusIdle
		s.errMsg = backend.ErrorMessage(err)
		s.metrics.ScansFailed.Inc()
		s.logger.Warn("scan failed", zap.String("error", s.errMsg))
		return
	}

	now := time.Now().UTC()
	s.status = StatusSucceeded
	s.result = result
	s.errMsg = ""
	s.lastCompletedAt = &now
	s.metrics.ScansSucceeded.Inc()
	s.logger.Info("scan completed",
		zap.Uint64("request_id", id),
		zap.Int("total", result.Total),
		zap.Int("online", result.Online),
	)

	time.AfterFunc(s.flashDelay, func() { s.settle(id) })
}

// settle flips succeeded back to idle after the flash, unless superseded in
// the interim.
func (s *Session) settle(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.activeID && s.status == StatusSucceeded {
		s.status = StatusIdle
	}
}

// StopScan cancels the active request. No-op unless a scan is running.
// The in-flight backend call is not aborted; its eventual completion is
// discarded by the supersession check.
func (s *Session) StopScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return
	}

	s.activeID++
	s.status = StatusIdle
	s.errMsg = ""
	s.logger.Info("scan stopped, in-flight request superseded",
		zap.Uint64("active_id", s.activeID))
}

// Snapshot returns a read-only copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Status:          s.status,
		Result:          s.result,
		Error:           s.errMsg,
		LastCompletedAt: s.lastCompletedAt,
	}
}
