package models

import (
	"encoding/json"
	"time"
)

// DeviceType categorizes a network device.
type DeviceType string

const (
	DeviceTypeServer      DeviceType = "server"
	DeviceTypeDesktop     DeviceType = "desktop"
	DeviceTypeLaptop      DeviceType = "laptop"
	DeviceTypeMobile      DeviceType = "mobile"
	DeviceTypeRouter      DeviceType = "router"
	DeviceTypeSwitch      DeviceType = "switch"
	DeviceTypePrinter     DeviceType = "printer"
	DeviceTypeIoT         DeviceType = "iot"
	DeviceTypeAccessPoint DeviceType = "access_point"
	DeviceTypeFirewall    DeviceType = "firewall"
	DeviceTypeNAS         DeviceType = "nas"
	DeviceTypePhone       DeviceType = "phone"
	DeviceTypeTablet      DeviceType = "tablet"
	DeviceTypeCamera      DeviceType = "camera"
	DeviceTypeUnknown     DeviceType = "unknown"
)

// DeviceStatus represents the current state of a device.
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusUnknown DeviceStatus = "unknown"
)

// Device represents a network device reported by the host daemon.
type Device struct {
	ID           string       `json:"id"`
	Hostname     string       `json:"hostname,omitempty"`
	IPAddresses  []string     `json:"ip_addresses"`
	MACAddress   string       `json:"mac_address,omitempty"`
	Manufacturer string       `json:"manufacturer,omitempty"`
	DeviceType   DeviceType   `json:"device_type"`
	Status       DeviceStatus `json:"status"`
	FirstSeen    time.Time    `json:"first_seen,omitempty"`
	LastSeen     time.Time    `json:"last_seen,omitempty"`
}

// MarshalJSON attaches the device-type icon so the dashboard never has to
// maintain its own type-to-icon table.
func (d Device) MarshalJSON() ([]byte, error) {
	type device Device
	return json.Marshal(struct {
		device
		Icon string `json:"icon"`
	}{device(d), d.DeviceType.Icon()})
}
