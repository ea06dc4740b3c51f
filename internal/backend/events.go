package backend

import "github.com/HerbHall/netglance/pkg/models"

// Kind discriminates monitoring events.
type Kind string

// Event kinds pushed by the host daemon while monitoring is active.
const (
	KindMonitoringStarted   Kind = "monitoring_started"
	KindMonitoringStopped   Kind = "monitoring_stopped"
	KindScanStarted         Kind = "scan_started"
	KindScanProgress        Kind = "scan_progress"
	KindScanCompleted       Kind = "scan_completed"
	KindNewDeviceDiscovered Kind = "new_device_discovered"
	KindDeviceWentOffline   Kind = "device_went_offline"
	KindDeviceCameOnline    Kind = "device_came_online"
	KindDeviceIPChanged     Kind = "device_ip_changed"
	KindMonitoringError     Kind = "monitoring_error"
)

// MonitoringEvent is the closed union of events pushed by the host daemon.
// Events are immutable once received and are not persisted.
type MonitoringEvent interface {
	EventKind() Kind
}

// MonitoringStarted reports that the backend began its recurring scan loop.
type MonitoringStarted struct {
	IntervalSeconds int `json:"interval_seconds"`
}

// MonitoringStopped reports that the backend ended its scan loop. It may
// arrive without a local stop call if the backend session ends on its own.
type MonitoringStopped struct{}

// ScanStarted reports the beginning of one background scan cycle.
type ScanStarted struct {
	ScanNumber int `json:"scan_number"`
}

// ScanProgress reports progress within the current scan cycle.
type ScanProgress struct {
	Phase   string `json:"phase"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// ScanCompleted reports the end of one background scan cycle.
type ScanCompleted struct {
	ScanNumber int   `json:"scan_number"`
	HostsFound int   `json:"hosts_found"`
	DurationMs int64 `json:"duration_ms"`
}

// NewDeviceDiscovered reports a device seen for the first time.
type NewDeviceDiscovered struct {
	IP         string            `json:"ip"`
	MAC        string            `json:"mac"`
	Hostname   string            `json:"hostname,omitempty"`
	DeviceType models.DeviceType `json:"device_type"`
}

// DeviceWentOffline reports a known device that stopped responding.
type DeviceWentOffline struct {
	MAC      string `json:"mac"`
	LastIP   string `json:"last_ip"`
	Hostname string `json:"hostname,omitempty"`
}

// DeviceCameOnline reports a known device that resumed responding.
type DeviceCameOnline struct {
	MAC      string `json:"mac"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
}

// DeviceIPChanged reports a known device that moved to a new address.
type DeviceIPChanged struct {
	MAC   string `json:"mac"`
	OldIP string `json:"old_ip"`
	NewIP string `json:"new_ip"`
}

// MonitoringError reports a non-fatal error inside the backend's scan loop.
type MonitoringError struct {
	Message string `json:"message"`
}

func (MonitoringStarted) EventKind() Kind   { return KindMonitoringStarted }
func (MonitoringStopped) EventKind() Kind   { return KindMonitoringStopped }
func (ScanStarted) EventKind() Kind         { return KindScanStarted }
func (ScanProgress) EventKind() Kind        { return KindScanProgress }
func (ScanCompleted) EventKind() Kind       { return KindScanCompleted }
func (NewDeviceDiscovered) EventKind() Kind { return KindNewDeviceDiscovered }
func (DeviceWentOffline) EventKind() Kind   { return KindDeviceWentOffline }
func (DeviceCameOnline) EventKind() Kind    { return KindDeviceCameOnline }
func (DeviceIPChanged) EventKind() Kind     { return KindDeviceIPChanged }
func (MonitoringError) EventKind() Kind     { return KindMonitoringError }
