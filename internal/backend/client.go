package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/event"
	"github.com/HerbHall/netglance/internal/hostenv"
	"github.com/HerbHall/netglance/pkg/models"
)

const (
	commandPathPrefix = "/api/v1/commands/"
	eventsPath        = "/api/v1/monitor/events"
)

// Compile-time interface guard.
var _ Commander = (*Client)(nil)

// Client speaks to the privileged host daemon: commands over HTTP, the
// monitoring event channel over a websocket that is pumped onto the bus.
// Every call consults the environment probe first and short-circuits with
// ErrHostUnavailable when the runtime is absent.
type Client struct {
	probe  *hostenv.Probe
	bus    *event.Bus
	httpc  *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	pumpStop context.CancelFunc
	pumpDone chan struct{}
}

// NewClient creates a live backend client. The client owns at most one
// event pump at a time, attached on StartMonitoring and detached on
// StopMonitoring or Close.
func NewClient(probe *hostenv.Probe, bus *event.Bus, logger *zap.Logger) *Client {
	return &Client{
		probe:  probe,
		bus:    bus,
		httpc:  &http.Client{},
		logger: logger,
	}
}

// ScanNetwork invokes the live scan_network command.
func (c *Client) ScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	var result models.ScanResult
	if err := c.call(ctx, "scan_network", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MockScanNetwork invokes the demo-mode mock_scan_network command.
func (c *Client) MockScanNetwork(ctx context.Context) (*models.ScanResult, error) {
	var result models.ScanResult
	if err := c.call(ctx, "mock_scan_network", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartMonitoring issues the start command and attaches the event pump on
// success.
func (c *Client) StartMonitoring(ctx context.Context, intervalSeconds int) error {
	body := map[string]int{}
	if intervalSeconds > 0 {
		body["interval_seconds"] = intervalSeconds
	}
	if err := c.call(ctx, "start_monitoring", body, nil); err != nil {
		return err
	}
	c.attachPump()
	return nil
}

// StopMonitoring issues the stop command and detaches the event pump.
func (c *Client) StopMonitoring(ctx context.Context) error {
	err := c.call(ctx, "stop_monitoring", nil, nil)
	// Detach even on error: if the daemon refused the stop because no
	// session exists, a lingering pump has nothing to read anyway.
	c.detachPump()
	return err
}

// MonitoringStatus queries the authoritative monitoring status.
func (c *Client) MonitoringStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.call(ctx, "get_monitoring_status", nil, &status); err != nil {
		return nil, err
	}
	status.Normalize()
	return &status, nil
}

// Close detaches the event pump. The daemon session, if any, keeps running.
func (c *Client) Close() {
	c.detachPump()
}

// call POSTs one command to the daemon. A nil out discards the response
// body; daemon errors arrive as {"error": "..."} with a non-2xx status.
func (c *Client) call(ctx context.Context, command string, body, out any) error {
	if !c.probe.Available() {
		return ErrHostUnavailable
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", command, err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.probe.Addr() + commandPathPrefix + command
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", command, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var daemonErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&daemonErr); decodeErr == nil && daemonErr.Error != "" {
			return fmt.Errorf("%s: %s", command, daemonErr.Error)
		}
		return fmt.Errorf("%s: daemon returned %s", command, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", command, err)
		}
	}
	return nil
}

func (c *Client) attachPump() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pumpStop != nil {
		return // single pump invariant
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.pumpStop = cancel
	c.pumpDone = done
	go c.pump(ctx, done)
}

func (c *Client) detachPump() {
	c.mu.Lock()
	stop, done := c.pumpStop, c.pumpDone
	c.pumpStop, c.pumpDone = nil, nil
	c.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

// pump reads envelopes from the daemon's event channel and republishes the
// decoded events on the bus, preserving arrival order.
func (c *Client) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	conn, _, err := websocket.Dial(ctx, c.probe.Addr()+eventsPath, nil)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("monitoring event channel dial failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c.logger.Debug("monitoring event channel attached")

	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("monitoring event channel closed", zap.Error(err))
			}
			return
		}

		ev, err := DecodeEnvelope(env)
		if err != nil {
			c.logger.Warn("skipping undecodable monitoring event", zap.Error(err))
			continue
		}

		ts := env.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		_ = c.bus.Publish(ctx, event.Event{
			Topic:     TopicMonitoringEvent,
			Source:    "backend",
			Timestamp: ts,
			Payload:   ev,
		})
	}
}
