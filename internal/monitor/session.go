// Package monitor owns the long-lived monitoring session: it drives the
// backend's recurring scan loop, folds its pushed events into derived
// status, progress, and a bounded activity log, and notifies external
// callbacks in event order.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/backend"
	"github.com/HerbHall/netglance/internal/event"
	"github.com/HerbHall/netglance/internal/metrics"
)

// DefaultMaxEvents caps the activity history unless overridden.
const DefaultMaxEvents = 50

// progressStartingPhase is the generic indicator shown between ScanStarted
// and the first ScanProgress event.
const progressStartingPhase = "starting"

// Progress is the event-derived view of the current scan cycle.
type Progress struct {
	Phase   string `json:"phase,omitempty"`
	Percent int    `json:"percent"`
}

// Option configures a Session.
type Option func(*Session)

// WithMaxEvents overrides the history capacity.
func WithMaxEvents(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// WithOnScanComplete registers a callback invoked, in fold order, for every
// ScanCompleted event. Panics inside the callback are recovered; errors are
// the callback owner's responsibility.
func WithOnScanComplete(fn func(hostsFound int, durationMs int64)) Option {
	return func(s *Session) { s.onScanComplete = fn }
}

// WithOnNewDevice registers a callback invoked for every
// NewDeviceDiscovered event, under the same rules as WithOnScanComplete.
func WithOnNewDevice(fn func(device backend.NewDeviceDiscovered)) Option {
	return func(s *Session) { s.onNewDevice = fn }
}

// Session is the process-wide monitoring state container. Construct
// exactly one at the composition root: it establishes the single bus
// subscription, and a second instance would fold every event twice.
type Session struct {
	backend backend.Commander
	logger  *zap.Logger
	metrics *metrics.Metrics

	maxEvents      int
	onScanComplete func(hostsFound int, durationMs int64)
	onNewDevice    func(device backend.NewDeviceDiscovered)

	unsubOnce sync.Once
	unsub     func()

	mu       sync.Mutex
	status   backend.Status
	progress Progress
	events   *history
	errMsg   string
	loading  bool
}

// New creates the monitoring session and subscribes it to the monitoring
// event topic. Call Close when the owning scope is disposed, or the leaked
// subscription keeps folding events.
func New(cmd backend.Commander, bus *event.Bus, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *Session {
	if m == nil {
		m = metrics.New()
	}
	s := &Session{
		backend:   cmd,
		logger:    logger,
		metrics:   m,
		maxEvents: DefaultMaxEvents,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = newHistory(s.maxEvents)
	s.unsub = bus.Subscribe(backend.TopicMonitoringEvent, s.handleEvent)
	return s
}

// Close tears down the event subscription. Idempotent.
func (s *Session) Close() {
	s.unsubOnce.Do(s.unsub)
}

// Start issues the start command with an optional interval override
// (intervalSeconds <= 0 means backend default), then reconciles status
// from the authoritative query. Errors are recorded in the session error
// field and are non-fatal: an already-running backend session keeps going.
func (s *Session) Start(ctx context.Context, intervalSeconds int) {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.backend.StartMonitoring(ctx, intervalSeconds); err != nil {
		s.setError(backend.ErrorMessage(err))
		s.logger.Warn("start monitoring failed", zap.Error(err))
		return
	}
	s.setError("")
	s.RefreshStatus(ctx)
}

// Stop issues the stop command; on success it reconciles status and resets
// the derived progress.
func (s *Session) Stop(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.backend.StopMonitoring(ctx); err != nil {
		s.setError(backend.ErrorMessage(err))
		s.logger.Warn("stop monitoring failed", zap.Error(err))
		return
	}
	s.setError("")
	s.RefreshStatus(ctx)

	s.mu.Lock()
	s.progress = Progress{}
	s.mu.Unlock()
}

// RefreshStatus pulls the authoritative status from the backend,
// reconciling any event-derived drift. Idempotent; used at initialization
// and after start/stop.
func (s *Session) RefreshStatus(ctx context.Context) {
	status, err := s.backend.MonitoringStatus(ctx)
	if err != nil {
		s.setError(backend.ErrorMessage(err))
		s.logger.Warn("monitoring status query failed", zap.Error(err))
		return
	}
	status.Normalize()

	s.mu.Lock()
	s.status = *status
	s.mu.Unlock()
}

// ClearEvents empties the activity history without touching status.
func (s *Session) ClearEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events.clear()
}

// Status returns the current aggregate monitoring status.
func (s *Session) Status() backend.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Progress returns the event-derived progress of the current scan cycle.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Events returns the activity history, newest first.
func (s *Session) Events() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.snapshot()
}

// Error returns the session-level error message, if any.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loading reports whether a start/stop round trip is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// handleEvent folds one monitoring event, in arrival order: history,
// derived progress, aggregate status, then external callbacks.
func (s *Session) handleEvent(ctx context.Context, e event.Event) {
	ev, ok := e.Payload.(backend.MonitoringEvent)
	if !ok {
		s.logger.Warn("unexpected payload type on monitoring topic",
			zap.String("topic", e.Topic))
		return
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	s.mu.Lock()
	if s.events.push(Entry{Kind: ev.EventKind(), Timestamp: ts, Event: ev}) {
		s.metrics.HistoryEvictions.Inc()
	}
	s.foldProgressLocked(ev)
	s.foldStatusLocked(ev)
	s.mu.Unlock()

	s.metrics.EventsFolded.WithLabelValues(string(ev.EventKind())).Inc()

	// Callbacks run synchronously so external consumers observe events in
	// arrival order, but a panicking callback must not corrupt the fold.
	switch ev := ev.(type) {
	case backend.ScanCompleted:
		if s.onScanComplete != nil {
			s.invoke("on_scan_complete", func() {
				s.onScanComplete(ev.HostsFound, ev.DurationMs)
			})
		}
	case backend.NewDeviceDiscovered:
		if s.onNewDevice != nil {
			s.invoke("on_new_device", func() {
				s.onNewDevice(ev)
			})
		}
	}
}

func (s *Session) foldProgressLocked(ev backend.MonitoringEvent) {
	switch ev := ev.(type) {
	case backend.ScanStarted:
		s.progress = Progress{Phase: progressStartingPhase, Percent: 0}
	case backend.ScanProgress:
		percent := ev.Percent
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		s.progress = Progress{Phase: ev.Phase, Percent: percent}
	case backend.ScanCompleted, backend.MonitoringStopped:
		s.progress = Progress{}
	}
}

func (s *Session) foldStatusLocked(ev backend.MonitoringEvent) {
	switch ev := ev.(type) {
	case backend.MonitoringStarted:
		s.status.Running = true
		s.status.IntervalSeconds = ev.IntervalSeconds
	case backend.MonitoringStopped:
		// May originate from the backend rather than a local stop call.
		s.status.Running = false
	case backend.ScanCompleted:
		s.status.ScanCount++
		s.status.DevicesTotal = ev.HostsFound
		if s.status.DevicesTotal < 0 {
			s.status.DevicesTotal = 0
		}
		if s.status.DevicesOnline > s.status.DevicesTotal {
			s.status.DevicesOnline = s.status.DevicesTotal
		}
	}
}

func (s *Session) invoke(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("monitoring callback panicked",
				zap.String("callback", name),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
