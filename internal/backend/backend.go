// Package backend defines the host daemon command surface consumed by the
// session layer, the monitoring event union it pushes, and the two
// implementations of that surface: the live websocket/HTTP client and the
// in-process demo simulator.
package backend

import (
	"context"
	"errors"

	"github.com/HerbHall/netglance/pkg/models"
)

// TopicMonitoringEvent is the single bus topic carrying MonitoringEvent
// payloads while a monitoring session is active.
const TopicMonitoringEvent = "monitor.event"

// HostUnavailableMessage is the fixed, user-actionable message shown when
// the privileged host runtime is not present.
const HostUnavailableMessage = "host runtime unavailable - launch the desktop app to scan"

// ErrHostUnavailable is returned by command calls when the privileged host
// runtime is not present.
var ErrHostUnavailable = errors.New("host runtime unavailable")

// Commander is the request/response command surface of the host daemon.
// All calls are side-effecting and may fail; failures surface as error
// values, never panics.
type Commander interface {
	// ScanNetwork runs a live network scan and returns its dataset.
	ScanNetwork(ctx context.Context) (*models.ScanResult, error)

	// MockScanNetwork is the demo-mode substitute for ScanNetwork.
	MockScanNetwork(ctx context.Context) (*models.ScanResult, error)

	// StartMonitoring begins the recurring background scan loop.
	// intervalSeconds <= 0 means the backend default.
	StartMonitoring(ctx context.Context, intervalSeconds int) error

	// StopMonitoring ends the background scan loop and event production.
	StopMonitoring(ctx context.Context) error

	// MonitoringStatus returns the backend's authoritative session status.
	MonitoringStatus(ctx context.Context) (*Status, error)
}

// Status is the authoritative monitoring status reported by the backend.
type Status struct {
	Running         bool `json:"running"`
	IntervalSeconds int  `json:"interval_seconds"`
	ScanCount       int  `json:"scan_count"`
	DevicesOnline   int  `json:"devices_online"`
	DevicesTotal    int  `json:"devices_total"`
}

// Normalize clamps impossible values from the wire: negative counters go to
// zero and devices_online never exceeds devices_total.
func (s *Status) Normalize() {
	if s.ScanCount < 0 {
		s.ScanCount = 0
	}
	if s.DevicesTotal < 0 {
		s.DevicesTotal = 0
	}
	if s.DevicesOnline < 0 {
		s.DevicesOnline = 0
	}
	if s.DevicesOnline > s.DevicesTotal {
		s.DevicesOnline = s.DevicesTotal
	}
}

// ErrorMessage converts a command-call error into the message surfaced to
// the user: the fixed host-unavailable text for a missing runtime, the raw
// error text otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrHostUnavailable) {
		return HostUnavailableMessage
	}
	return err.Error()
}
