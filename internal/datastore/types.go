package datastore

import "time"

// Store persists the facade's cross-session state: known-VIN profiles,
// discovery run results, DTC read history, and live-data telemetry.
type Store interface {
	// VIN cache
	SaveVINCacheEntry(entry *VINCacheEntry) error
	GetVINCacheEntry(vin string) (*VINCacheEntry, error)
	ListVINCacheEntries() ([]*VINCacheEntry, error)
	DeleteVINCacheEntry(vin string) error

	// Discovery history
	SaveDiscoveryResult(vin string, result *DiscoveryRecord) error
	GetDiscoveryResults(vin string, start, end time.Time) ([]*DiscoveryRecord, error)

	// DTC read history
	SaveDTCReadout(vin string, readout *DTCReadout) error
	GetDTCHistory(vin string, start, end time.Time) ([]*DTCReadout, error)

	// Live-data telemetry (time series)
	SaveTelemetry(vin string, point *TelemetryPoint) error
	GetTelemetry(vin string, start, end time.Time) ([]*TelemetryPoint, error)
	GetLatestTelemetry(vin string) (*TelemetryPoint, error)

	Close() error
}

// VINCacheEntry is the known profile for a previously-seen vehicle:
// its brand hint, discovered module addressing, and protocol, so a
// reconnect can skip the discovery sweep.
type VINCacheEntry struct {
	VIN        string    `json:"vin"`
	BrandHint  string    `json:"brand_hint"`
	Protocol   string    `json:"protocol"`
	Addressing string    `json:"addressing"`
	Modules    []byte    `json:"modules"` // JSON-encoded []discovery.Module
	CachedAt   time.Time `json:"cached_at"`
}

// DiscoveryRecord is one persisted discovery run outcome.
type DiscoveryRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Protocol     string    `json:"protocol"`
	Addressing   string    `json:"addressing"`
	ModuleCount  int       `json:"module_count"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// DTCReadout is one persisted DTC read (ReadDTCs/ReadDTCInfo) outcome.
type DTCReadout struct {
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
	Codes     []string  `json:"codes"`
	MILOn     bool      `json:"mil_on"`
}

// TelemetryPoint is a single point-in-time PID reading.
type TelemetryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	VIN       string    `json:"vin"`
	PID       string    `json:"pid"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}
