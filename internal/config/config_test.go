package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, `
transport:
  type: serial
  address: /dev/ttyUSB0
  baudRate: 38400
vehicle:
  manufacturer_hint: jeep
discovery:
  id_start_hex: "700"
  id_end_hex: "7FF"
  timeout_ms: 200
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Transport.Type != "serial" || cfg.Transport.BaudRate != 38400 {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if cfg.Vehicle.ManufacturerHint != "jeep" {
		t.Errorf("ManufacturerHint = %q", cfg.Vehicle.ManufacturerHint)
	}
	if cfg.Discovery.IDStartHex != "700" {
		t.Errorf("IDStartHex = %q", cfg.Discovery.IDStartHex)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestGetTransportConfigPrefersTestTCP(t *testing.T) {
	cfg := &Config{}
	cfg.Testing.UseTestTCP = true
	cfg.Testing.TCPAddress = "127.0.0.1:35000"
	cfg.Transport.Type = "serial"

	tc := cfg.GetTransportConfig()
	if tc.Type != "tcp" || tc.Address != "127.0.0.1:35000" {
		t.Errorf("GetTransportConfig = %+v", tc)
	}
}

func TestGetTransportConfigPrefersMock(t *testing.T) {
	cfg := &Config{}
	cfg.Testing.UseMockData = true
	cfg.Transport.Type = "serial"

	tc := cfg.GetTransportConfig()
	if tc.Type != "mock" {
		t.Errorf("GetTransportConfig = %+v, want mock", tc)
	}
}

func TestGetTransportConfigFallsBackToTransportSection(t *testing.T) {
	cfg := &Config{}
	cfg.Transport.Type = "serial"
	cfg.Transport.Address = "/dev/ttyUSB0"
	cfg.Transport.BaudRate = 9600

	tc := cfg.GetTransportConfig()
	if tc.Type != "serial" || tc.Address != "/dev/ttyUSB0" || tc.BaudRate != 9600 {
		t.Errorf("GetTransportConfig = %+v", tc)
	}
}

func TestGetDatastoreConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Datastore.SQLite.Path = "vehicle.db"
	cfg.Datastore.InfluxDB.URL = "http://localhost:8086"
	cfg.Datastore.InfluxDB.Org = "org"
	cfg.Datastore.InfluxDB.Bucket = "bucket"
	cfg.Datastore.InfluxDB.Token = "token"

	sqlitePath, influxURL, influxOrg, influxBucket, influxToken := cfg.GetDatastoreConfig()
	if sqlitePath != "vehicle.db" || influxURL != "http://localhost:8086" || influxOrg != "org" || influxBucket != "bucket" || influxToken != "token" {
		t.Error("GetDatastoreConfig returned unexpected values")
	}
}

func TestDiscoveryTimeoutDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DiscoveryTimeout(); got != 120*time.Millisecond {
		t.Errorf("DiscoveryTimeout default = %v, want 120ms", got)
	}
}

func TestDiscoveryTimeoutConfigured(t *testing.T) {
	cfg := &Config{}
	cfg.Discovery.TimeoutMS = 500
	if got := cfg.DiscoveryTimeout(); got != 500*time.Millisecond {
		t.Errorf("DiscoveryTimeout = %v, want 500ms", got)
	}
}
