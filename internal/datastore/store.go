package datastore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds datastore connection settings.
type Config struct {
	SQLitePath     string
	InfluxDBURL    string
	InfluxDBOrg    string
	InfluxDBToken  string
	InfluxDBBucket string
}

// CombinedStore implements Store over SQLite (VIN cache, discovery and
// DTC history) and InfluxDB (telemetry time series).
type CombinedStore struct {
	sqlite *SQLiteStore
	influx *InfluxDBStore
}

// NewStore opens both backing stores for config.
func NewStore(config *Config) (Store, error) {
	sqlite, err := NewSQLiteStore(config.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	influx, err := NewInfluxDBStore(
		config.InfluxDBURL,
		config.InfluxDBToken,
		config.InfluxDBOrg,
		config.InfluxDBBucket,
	)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to create InfluxDB store: %w", err)
	}

	return &CombinedStore{sqlite: sqlite, influx: influx}, nil
}

func (s *CombinedStore) SaveVINCacheEntry(entry *VINCacheEntry) error {
	return s.sqlite.SaveVINCacheEntry(entry)
}

func (s *CombinedStore) GetVINCacheEntry(vin string) (*VINCacheEntry, error) {
	return s.sqlite.GetVINCacheEntry(vin)
}

func (s *CombinedStore) ListVINCacheEntries() ([]*VINCacheEntry, error) {
	return s.sqlite.ListVINCacheEntries()
}

func (s *CombinedStore) DeleteVINCacheEntry(vin string) error {
	return s.sqlite.DeleteVINCacheEntry(vin)
}

func (s *CombinedStore) SaveDiscoveryResult(vin string, result *DiscoveryRecord) error {
	return s.sqlite.SaveDiscoveryResultSQL(vin, result)
}

func (s *CombinedStore) GetDiscoveryResults(vin string, start, end time.Time) ([]*DiscoveryRecord, error) {
	return s.sqlite.GetDiscoveryResultsSQL(vin, start, end)
}

func (s *CombinedStore) SaveDTCReadout(vin string, readout *DTCReadout) error {
	codesJSON, err := json.Marshal(readout.Codes)
	if err != nil {
		return fmt.Errorf("failed to marshal DTC codes: %w", err)
	}
	return s.sqlite.SaveDTCReadoutSQL(vin, readout, codesJSON)
}

func (s *CombinedStore) GetDTCHistory(vin string, start, end time.Time) ([]*DTCReadout, error) {
	readouts, rawCodes, err := s.sqlite.GetDTCHistorySQL(vin, start, end)
	if err != nil {
		return nil, err
	}
	for i, r := range readouts {
		if i < len(rawCodes) {
			_ = json.Unmarshal(rawCodes[i], &r.Codes)
		}
	}
	return readouts, nil
}

func (s *CombinedStore) SaveTelemetry(vin string, point *TelemetryPoint) error {
	return s.influx.SaveTelemetry(vin, point)
}

func (s *CombinedStore) GetTelemetry(vin string, start, end time.Time) ([]*TelemetryPoint, error) {
	return s.influx.GetTelemetry(vin, start, end)
}

func (s *CombinedStore) GetLatestTelemetry(vin string) (*TelemetryPoint, error) {
	return s.influx.GetLatestTelemetry(vin)
}

// Close closes both backing stores, returning the SQLite error first if
// both fail.
func (s *CombinedStore) Close() error {
	sqliteErr := s.sqlite.Close()
	influxErr := s.influx.Close()

	if sqliteErr != nil {
		return sqliteErr
	}
	return influxErr
}
