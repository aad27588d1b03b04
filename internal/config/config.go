package config

import (
	"fmt"
	"os"
	"time"

	"github.com/anodyne74/obdcore/internal/transport"
	"gopkg.in/yaml.v3"
)

// Config is the full on-disk configuration for a session: transport
// selection, DTC manufacturer hint, datastore targets, and discovery
// defaults.
type Config struct {
	Transport struct {
		Type     string `yaml:"type"`
		Address  string `yaml:"address"`
		BaudRate int    `yaml:"baudRate"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"transport"`

	Testing struct {
		UseMockData bool   `yaml:"useMockData"`
		UseTestTCP  bool   `yaml:"useTestTCP"`
		TCPAddress  string `yaml:"tcpAddress"`
	} `yaml:"testing"`

	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Datastore struct {
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		InfluxDB struct {
			URL    string `yaml:"url"`
			Org    string `yaml:"org"`
			Bucket string `yaml:"bucket"`
			Token  string `yaml:"token"`
		} `yaml:"influxdb"`
	} `yaml:"datastore"`

	Vehicle struct {
		// ManufacturerHint seeds the DTC/UDS catalog lookup (e.g. "jeep",
		// "land_rover") before a VIN has been read; discovery falls back to
		// a VIN-derived hint only when this is empty.
		ManufacturerHint string `yaml:"manufacturer_hint"`
	} `yaml:"vehicle"`

	Discovery struct {
		IDStartHex      string `yaml:"id_start_hex"`
		IDEndHex        string `yaml:"id_end_hex"`
		TimeoutMS       int    `yaml:"timeout_ms"`
		Retries         int    `yaml:"retries"`
		Try250k         bool   `yaml:"try_250k"`
		Include29Bit    bool   `yaml:"include_29bit"`
		StopOnFirst     bool   `yaml:"stop_on_first"`
		ConfirmVIN      bool   `yaml:"confirm_vin"`
		ConfirmDTCs     bool   `yaml:"confirm_dtcs"`
	} `yaml:"discovery"`
}

// LoadConfig reads and parses filename as YAML.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &config, nil
}

// GetTransportConfig resolves the active transport.Config from test flags
// and the transport section, test flags taking precedence.
func (c *Config) GetTransportConfig() *transport.Config {
	if c.Testing.UseTestTCP {
		return &transport.Config{Type: "tcp", Address: c.Testing.TCPAddress}
	}
	if c.Testing.UseMockData {
		return &transport.Config{Type: "mock"}
	}
	return &transport.Config{
		Type:     c.Transport.Type,
		Address:  c.Transport.Address,
		BaudRate: c.Transport.BaudRate,
		Debug:    c.Transport.Debug,
	}
}

// GetDatastoreConfig resolves the datastore.Config for this session.
func (c *Config) GetDatastoreConfig() (sqlitePath, influxURL, influxOrg, influxBucket, influxToken string) {
	return c.Datastore.SQLite.Path,
		c.Datastore.InfluxDB.URL,
		c.Datastore.InfluxDB.Org,
		c.Datastore.InfluxDB.Bucket,
		c.Datastore.InfluxDB.Token
}

// DiscoveryTimeout returns the discovery section's per-probe timeout,
// falling back to 120ms when unset.
func (c *Config) DiscoveryTimeout() time.Duration {
	if c.Discovery.TimeoutMS <= 0 {
		return 120 * time.Millisecond
	}
	return time.Duration(c.Discovery.TimeoutMS) * time.Millisecond
}
