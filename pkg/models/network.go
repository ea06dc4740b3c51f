package models

// ScanResult holds the outcome of one network scan as reported by the
// host daemon's scan_network command.
type ScanResult struct {
	ID        string   `json:"id"`
	Subnet    string   `json:"subnet"`
	StartedAt string   `json:"started_at"`
	EndedAt   string   `json:"ended_at,omitempty"`
	Status    string   `json:"status"`
	Devices   []Device `json:"devices,omitempty"`
	Total     int      `json:"total"`
	Online    int      `json:"online"`
}
