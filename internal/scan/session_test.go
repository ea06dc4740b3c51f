package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/backend"
	"github.com/HerbHall/netglance/internal/config"
	"github.com/HerbHall/netglance/internal/metrics"
	"github.com/HerbHall/netglance/pkg/models"
)

// fakeBackend hands each scan invocation to the test as a pending call;
// the test resolves it by sending on reply.
type fakeBackend struct {
	calls chan *pendingCall
}

type pendingCall struct {
	demo  bool
	reply chan callReply
}

type callReply struct {
	result *models.ScanResult
	err    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(chan *pendingCall, 8)}
}

func (f *fakeBackend) do(demo bool) (*models.ScanResult, error) {
	c := &pendingCall{demo: demo, reply: make(chan callReply, 1)}
	f.calls <- c
	r := <-c.reply
	return r.result, r.err
}

func (f *fakeBackend) ScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	return f.do(false)
}

func (f *fakeBackend) MockScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	return f.do(true)
}

func (f *fakeBackend) StartMonitoring(ctx context.Context, intervalSeconds int) error { return nil }
func (f *fakeBackend) StopMonitoring(ctx context.Context) error                       { return nil }
func (f *fakeBackend) MonitoringStatus(ctx context.Context) (*backend.Status, error) {
	return &backend.Status{}, nil
}

func newTestSession(t *testing.T, fb *fakeBackend, demoMode bool) *Session {
	t.Helper()

	v := viper.New()
	v.Set("demo_mode", demoMode)
	s := New(fb, config.New(v), metrics.New(), zap.NewNop())
	s.flashDelay = 10 * time.Millisecond
	return s
}

// nextCall waits for the backend to receive a scan invocation.
func nextCall(t *testing.T, fb *fakeBackend) *pendingCall {
	t.Helper()
	select {
	case c := <-fb.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for backend call")
		return nil
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestScanSuccess(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.Scan(context.Background())
	call := nextCall(t, fb)

	if call.demo {
		t.Error("scan used mock command with demo_mode=false")
	}
	if got := s.Snapshot().Status; got != StatusRunning {
		t.Errorf("Status = %q while in flight, want %q", got, StatusRunning)
	}

	result := &models.ScanResult{ID: "scan-1", Total: 5, Online: 3}
	call.reply <- callReply{result: result}

	waitFor(t, func() bool { return s.Snapshot().Status == StatusSucceeded })

	snap := s.Snapshot()
	if snap.Result == nil || snap.Result.ID != "scan-1" {
		t.Errorf("Result = %+v, want scan-1", snap.Result)
	}
	if snap.Error != "" {
		t.Errorf("Error = %q, want empty", snap.Error)
	}
	if snap.LastCompletedAt == nil {
		t.Error("LastCompletedAt = nil after success")
	}

	// Ready flash: succeeded settles back to idle, result retained.
	waitFor(t, func() bool { return s.Snapshot().Status == StatusIdle })
	if snap := s.Snapshot(); snap.Result == nil {
		t.Error("Result cleared by ready flash, want retained")
	}
}

func TestScanWhileRunningIsNoOp(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.Scan(context.Background())
	call := nextCall(t, fb)

	// Second request while running must not reach the backend.
	s.Scan(context.Background())
	select {
	case <-fb.calls:
		t.Fatal("second Scan() reached the backend while first was running")
	case <-time.After(50 * time.Millisecond):
	}

	call.reply <- callReply{result: &models.ScanResult{ID: "scan-1"}}
	waitFor(t, func() bool { return s.Snapshot().Status == StatusSucceeded })

	if got := s.Snapshot().Result.ID; got != "scan-1" {
		t.Errorf("Result.ID = %q, want %q", got, "scan-1")
	}
}

func TestScanDemoModeUsesMockCommand(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, true)

	s.Scan(context.Background())
	call := nextCall(t, fb)

	if !call.demo {
		t.Error("scan used live command with demo_mode=true")
	}
	call.reply <- callReply{result: &models.ScanResult{}}
}

func TestScanFailureSurfacesRawMessage(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.Scan(context.Background())
	call := nextCall(t, fb)
	call.reply <- callReply{err: errors.New("subnet parse failed")}

	waitFor(t, func() bool { return s.Snapshot().Error != "" })

	snap := s.Snapshot()
	if snap.Status != StatusIdle {
		t.Errorf("Status = %q after failure, want %q", snap.Status, StatusIdle)
	}
	if snap.Error != "subnet parse failed" {
		t.Errorf("Error = %q, want raw message", snap.Error)
	}
}

func TestScanFailureHostUnavailable(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.Scan(context.Background())
	call := nextCall(t, fb)
	call.reply <- callReply{err: backend.ErrHostUnavailable}

	waitFor(t, func() bool { return s.Snapshot().Error != "" })

	if got := s.Snapshot().Error; got != backend.HostUnavailableMessage {
		t.Errorf("Error = %q, want %q", got, backend.HostUnavailableMessage)
	}
}

func TestStopScanDiscardsLateCompletion(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.Scan(context.Background())
	call := nextCall(t, fb)

	s.StopScan()
	if got := s.Snapshot().Status; got != StatusIdle {
		t.Errorf("Status = %q after StopScan, want %q", got, StatusIdle)
	}

	// The original call resolves after the stop; its result must be
	// discarded without touching state.
	call.reply <- callReply{result: &models.ScanResult{ID: "stale"}}

	time.Sleep(50 * time.Millisecond)
	snap := s.Snapshot()
	if snap.Status != StatusIdle {
		t.Errorf("Status = %q after stale completion, want %q", snap.Status, StatusIdle)
	}
	if snap.Result != nil {
		t.Errorf("Result = %+v after stale completion, want unchanged nil", snap.Result)
	}
}

func TestSupersededRequestNeverOverwritesNewerResult(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	// First request goes in flight, then is superseded by stop + rescan.
	s.Scan(context.Background())
	first := nextCall(t, fb)

	s.StopScan()
	s.Scan(context.Background())
	second := nextCall(t, fb)

	// Second (current) request completes first.
	second.reply <- callReply{result: &models.ScanResult{ID: "current"}}
	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Result != nil && snap.Result.ID == "current"
	})

	// First request resolving afterwards is stale in completion order.
	first.reply <- callReply{result: &models.ScanResult{ID: "stale"}}

	time.Sleep(50 * time.Millisecond)
	if got := s.Snapshot().Result.ID; got != "current" {
		t.Errorf("Result.ID = %q, want %q (stale result applied)", got, "current")
	}
}

func TestStopScanWhileIdleIsNoOp(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	s.StopScan()
	if got := s.Snapshot().Status; got != StatusIdle {
		t.Errorf("Status = %q, want %q", got, StatusIdle)
	}
}

func TestRunningImpliesNoError(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSession(t, fb, false)

	// Fail once to populate the error field.
	s.Scan(context.Background())
	nextCall(t, fb).reply <- callReply{err: errors.New("boom")}
	waitFor(t, func() bool { return s.Snapshot().Error != "" })

	// A new scan must clear it while running.
	s.Scan(context.Background())
	call := nextCall(t, fb)

	snap := s.Snapshot()
	if snap.Status != StatusRunning {
		t.Fatalf("Status = %q, want %q", snap.Status, StatusRunning)
	}
	if snap.Error != "" {
		t.Errorf("Error = %q while running, want empty", snap.Error)
	}
	call.reply <- callReply{result: &models.ScanResult{}}
}
