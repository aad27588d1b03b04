// Package capture records raw adapter traffic to disk and replays it back.
// A Recorder is wired to a driver as a transport.RawLogger, so a session
// file is a faithful log of every AT/OBD command sent and every line the
// adapter answered with, independent of how the lines were decoded.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event is one TX or RX leg of a command exchange.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Direction string    `json:"direction"` // "TX" or "RX"
	Command   string    `json:"command"`
	Lines     []string  `json:"lines,omitempty"`
}

// Session is a sequence of trace events captured from one adapter
// connection, along with enough context to make sense of them later.
type Session struct {
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
	VehicleInfo string            `json:"vehicle_info"`
	Events      []Event           `json:"events"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	filePath    string
}

// NewSession starts a new, empty trace session.
func NewSession(vehicleInfo string) *Session {
	return &Session{
		StartTime:   time.Now(),
		VehicleInfo: vehicleInfo,
		Events:      make([]Event, 0),
		Metadata:    make(map[string]string),
	}
}

// AddEvent appends an event to the session.
func (s *Session) AddEvent(e Event) {
	s.Events = append(s.Events, e)
}

// SetMetadata adds or updates a metadata key.
func (s *Session) SetMetadata(key, value string) {
	s.Metadata[key] = value
}

// Save writes the session to disk as JSON, stamping EndTime first. If no
// path was set it picks captures/trace_<timestamp>.json.
func (s *Session) Save() error {
	if s.filePath == "" {
		timestamp := time.Now().Format("20060102_150405")
		s.filePath = filepath.Join("captures", fmt.Sprintf("trace_%s.json", timestamp))
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	s.EndTime = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// LoadSession reads a session previously written by Save.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	s.filePath = path
	return &s, nil
}
