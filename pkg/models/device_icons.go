package models

// defaultIcon is used for device types without a dedicated icon.
const defaultIcon = "help-circle"

// deviceIcons maps device types to Lucide icon names (https://lucide.dev),
// which the dashboard renders directly.
var deviceIcons = map[DeviceType]string{
	DeviceTypeServer:      "server",
	DeviceTypeDesktop:     "monitor",
	DeviceTypeLaptop:      "laptop",
	DeviceTypeMobile:      "smartphone",
	DeviceTypeRouter:      "router",
	DeviceTypeSwitch:      "network",
	DeviceTypePrinter:     "printer",
	DeviceTypeIoT:         "cpu",
	DeviceTypeAccessPoint: "wifi",
	DeviceTypeFirewall:    "shield",
	DeviceTypeNAS:         "hard-drive",
	DeviceTypePhone:       "phone",
	DeviceTypeTablet:      "tablet",
	DeviceTypeCamera:      "camera",
}

// Icon returns the dashboard icon identifier for the device type.
func (dt DeviceType) Icon() string {
	if icon, ok := deviceIcons[dt]; ok {
		return icon
	}
	return defaultIcon
}
