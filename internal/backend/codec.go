package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of a monitoring event on the daemon's event
// channel.
type Envelope struct {
	Type      Kind            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope maps a wire envelope to its concrete event. Unknown types
// are an error; callers log and skip them rather than failing the stream.
func DecodeEnvelope(env Envelope) (MonitoringEvent, error) {
	var ev MonitoringEvent
	switch env.Type {
	case KindMonitoringStarted:
		ev = &MonitoringStarted{}
	case KindMonitoringStopped:
		ev = &MonitoringStopped{}
	case KindScanStarted:
		ev = &ScanStarted{}
	case KindScanProgress:
		ev = &ScanProgress{}
	case KindScanCompleted:
		ev = &ScanCompleted{}
	case KindNewDeviceDiscovered:
		ev = &NewDeviceDiscovered{}
	case KindDeviceWentOffline:
		ev = &DeviceWentOffline{}
	case KindDeviceCameOnline:
		ev = &DeviceCameOnline{}
	case KindDeviceIPChanged:
		ev = &DeviceIPChanged{}
	case KindMonitoringError:
		ev = &MonitoringError{}
	default:
		return nil, fmt.Errorf("unknown monitoring event type %q", env.Type)
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ev), nil
}

// EncodeEnvelope wraps a concrete event in its wire envelope.
func EncodeEnvelope(ev MonitoringEvent, at time.Time) (Envelope, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", ev.EventKind(), err)
	}
	return Envelope{Type: ev.EventKind(), Timestamp: at, Data: data}, nil
}

// deref returns the value form so folds can type-switch on value types.
func deref(ev MonitoringEvent) MonitoringEvent {
	switch e := ev.(type) {
	case *MonitoringStarted:
		return *e
	case *MonitoringStopped:
		return *e
	case *ScanStarted:
		return *e
	case *ScanProgress:
		return *e
	case *ScanCompleted:
		return *e
	case *NewDeviceDiscovered:
		return *e
	case *DeviceWentOffline:
		return *e
	case *DeviceCameOnline:
		return *e
	case *DeviceIPChanged:
		return *e
	case *MonitoringError:
		return *e
	default:
		return ev
	}
}
