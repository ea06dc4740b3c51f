package backend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/event"
	"github.com/HerbHall/netglance/pkg/models"
)

// Compile-time interface guard.
var _ Commander = (*Demo)(nil)

// Demo implements the Commander surface entirely in-process: scans are
// fabricated from a simulated device fleet and monitoring events are
// published straight onto the bus. It never touches the network, which
// keeps the orchestration layer usable in preview contexts where the host
// daemon is absent.
type Demo struct {
	bus    *event.Bus
	logger *zap.Logger

	// phaseDelay paces the simulated scan phases.
	phaseDelay time.Duration

	mu              sync.Mutex
	fleet           []*demoDevice
	running         bool
	intervalSeconds int
	scanCount       int
	cancel          context.CancelFunc
	done            chan struct{}
}

type demoDevice struct {
	dev    models.Device
	online bool
}

// demoSubnet is the address space the simulated fleet lives in.
const demoSubnet = "192.168.1.0/24"

// NewDemo creates a demo backend with a small simulated fleet.
func NewDemo(bus *event.Bus, logger *zap.Logger) *Demo {
	return &Demo{
		bus:        bus,
		logger:     logger,
		phaseDelay: 25 * time.Millisecond,
		fleet:      seedFleet(),
	}
}

func seedFleet() []*demoDevice {
	seeds := []struct {
		hostname string
		kind     models.DeviceType
	}{
		{"gateway", models.DeviceTypeRouter},
		{"office-nas", models.DeviceTypeNAS},
		{"print-svc", models.DeviceTypePrinter},
		{"dev-laptop", models.DeviceTypeLaptop},
		{"media-pc", models.DeviceTypeDesktop},
		{"hall-cam", models.DeviceTypeCamera},
		{"thermostat", models.DeviceTypeIoT},
		{"pixel-9", models.DeviceTypeMobile},
	}

	now := time.Now().UTC()
	fleet := make([]*demoDevice, 0, len(seeds))
	for i, s := range seeds {
		fleet = append(fleet, &demoDevice{
			dev: models.Device{
				ID:          uuid.New().String(),
				Hostname:    s.hostname,
				IPAddresses: []string{fmt.Sprintf("192.168.1.%d", 10+i)},
				MACAddress:  randomMAC(),
				DeviceType:  s.kind,
				Status:      models.DeviceStatusOnline,
				FirstSeen:   now,
				LastSeen:    now,
			},
			online: true,
		})
	}
	return fleet
}

func randomMAC() string {
	// Locally administered prefix keeps simulated MACs out of real OUI space.
	return fmt.Sprintf("02:4e:47:%02x:%02x:%02x",
		rand.IntN(256), rand.IntN(256), rand.IntN(256))
}

// ScanNetwork in demo mode is the same simulation as MockScanNetwork; the
// demo backend has no privileged runtime to delegate to.
func (d *Demo) ScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	return d.MockScanNetwork(ctx)
}

// MockScanNetwork fabricates a plausible scan of the simulated fleet.
func (d *Demo) MockScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	started := time.Now().UTC()

	// Simulated probe latency, honoring caller cancellation.
	select {
	case <-time.After(d.phaseDelay + time.Duration(rand.IntN(150))*time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.shuffleFleetLocked(nil)

	devices := make([]models.Device, 0, len(d.fleet))
	online := 0
	for _, fd := range d.fleet {
		dev := fd.dev
		if fd.online {
			dev.Status = models.DeviceStatusOnline
			dev.LastSeen = time.Now().UTC()
			online++
		} else {
			dev.Status = models.DeviceStatusOffline
		}
		devices = append(devices, dev)
	}

	return &models.ScanResult{
		ID:        uuid.New().String(),
		Subnet:    demoSubnet,
		StartedAt: started.Format(time.RFC3339),
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
		Status:    "completed",
		Devices:   devices,
		Total:     len(devices),
		Online:    online,
	}, nil
}

// StartMonitoring begins the simulated scan loop. Starting an already
// running session only adopts the new interval.
func (d *Demo) StartMonitoring(ctx context.Context, intervalSeconds int) error {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}

	d.mu.Lock()
	if d.running {
		d.intervalSeconds = intervalSeconds
		d.mu.Unlock()
		d.logger.Debug("demo monitoring already running, interval adopted",
			zap.Int("interval_seconds", intervalSeconds))
		return nil
	}
	d.running = true
	d.intervalSeconds = intervalSeconds
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.mu.Unlock()

	d.publish(ctx, MonitoringStarted{IntervalSeconds: intervalSeconds})
	go d.loop(loopCtx, done, time.Duration(intervalSeconds)*time.Second)
	return nil
}

// StopMonitoring ends the simulated loop and announces the stop. Stopping
// an idle session is a no-op.
func (d *Demo) StopMonitoring(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	cancel()
	<-done
	d.publish(ctx, MonitoringStopped{})
	return nil
}

// MonitoringStatus reports the simulator's authoritative status.
func (d *Demo) MonitoringStatus(ctx context.Context) (*Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	online := 0
	for _, fd := range d.fleet {
		if fd.online {
			online++
		}
	}
	status := &Status{
		Running:         d.running,
		IntervalSeconds: d.intervalSeconds,
		ScanCount:       d.scanCount,
		DevicesOnline:   online,
		DevicesTotal:    len(d.fleet),
	}
	status.Normalize()
	return status, nil
}

func (d *Demo) loop(ctx context.Context, done chan struct{}, interval time.Duration) {
	defer close(done)

	// First cycle runs immediately so the UI sees activity without
	// waiting a full interval.
	d.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle simulates one background scan: start, phased progress, fleet
// churn, completion.
func (d *Demo) runCycle(ctx context.Context) {
	started := time.Now()

	d.mu.Lock()
	d.scanCount++
	n := d.scanCount
	d.mu.Unlock()

	d.publish(ctx, ScanStarted{ScanNumber: n})

	phases := []ScanProgress{
		{Phase: "arp", Percent: 25, Message: "probing address table"},
		{Phase: "icmp", Percent: 55, Message: "pinging known hosts"},
		{Phase: "identify", Percent: 85, Message: "resolving hostnames"},
	}
	for _, p := range phases {
		select {
		case <-time.After(d.phaseDelay):
		case <-ctx.Done():
			return
		}
		d.publish(ctx, p)
	}

	var churn []MonitoringEvent
	d.mu.Lock()
	d.shuffleFleetLocked(&churn)
	online := 0
	for _, fd := range d.fleet {
		if fd.online {
			online++
		}
	}
	d.mu.Unlock()

	for _, ev := range churn {
		d.publish(ctx, ev)
	}

	d.publish(ctx, ScanCompleted{
		ScanNumber: n,
		HostsFound: online,
		DurationMs: time.Since(started).Milliseconds(),
	})
}

// shuffleFleetLocked randomly toggles device availability and occasionally
// moves a device to a new address or discovers a brand new one. When churn
// is non-nil the corresponding events are appended to it. Callers hold d.mu.
func (d *Demo) shuffleFleetLocked(churn *[]MonitoringEvent) {
	for _, fd := range d.fleet {
		roll := rand.Float64()
		switch {
		case fd.online && roll < 0.08:
			fd.online = false
			if churn != nil {
				*churn = append(*churn, DeviceWentOffline{
					MAC:      fd.dev.MACAddress,
					LastIP:   fd.dev.IPAddresses[0],
					Hostname: fd.dev.Hostname,
				})
			}
		case !fd.online && roll < 0.4:
			fd.online = true
			if churn != nil {
				*churn = append(*churn, DeviceCameOnline{
					MAC:      fd.dev.MACAddress,
					IP:       fd.dev.IPAddresses[0],
					Hostname: fd.dev.Hostname,
				})
			}
		case fd.online && roll < 0.1:
			oldIP := fd.dev.IPAddresses[0]
			newIP := fmt.Sprintf("192.168.1.%d", 100+rand.IntN(100))
			fd.dev.IPAddresses[0] = newIP
			if churn != nil {
				*churn = append(*churn, DeviceIPChanged{
					MAC:   fd.dev.MACAddress,
					OldIP: oldIP,
					NewIP: newIP,
				})
			}
		}
	}

	// Rarely a new device wanders in.
	if churn != nil && rand.Float64() < 0.05 && len(d.fleet) < 24 {
		now := time.Now().UTC()
		nd := &demoDevice{
			dev: models.Device{
				ID:          uuid.New().String(),
				Hostname:    fmt.Sprintf("guest-%02d", len(d.fleet)),
				IPAddresses: []string{fmt.Sprintf("192.168.1.%d", 200+len(d.fleet))},
				MACAddress:  randomMAC(),
				DeviceType:  models.DeviceTypeUnknown,
				Status:      models.DeviceStatusOnline,
				FirstSeen:   now,
				LastSeen:    now,
			},
			online: true,
		}
		d.fleet = append(d.fleet, nd)
		*churn = append(*churn, NewDeviceDiscovered{
			IP:         nd.dev.IPAddresses[0],
			MAC:        nd.dev.MACAddress,
			Hostname:   nd.dev.Hostname,
			DeviceType: nd.dev.DeviceType,
		})
	}
}

func (d *Demo) publish(ctx context.Context, ev MonitoringEvent) {
	_ = d.bus.Publish(ctx, event.Event{
		Topic:     TopicMonitoringEvent,
		Source:    "demo",
		Timestamp: time.Now().UTC(),
		Payload:   ev,
	})
}
