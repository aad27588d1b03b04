package obd

import (
	"fmt"
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/protocol"
	"github.com/anodyne74/obdcore/internal/transport"
)

// ecuPrefer is the ECU scan order used to pick a response when several
// ECUs answer the same request, engine pair first.
var ecuPrefer = []string{
	"7E8", "7E0", "7E9", "7E1", "7EA", "7E2", "7EB", "7E3",
	"7EC", "7E4", "7ED", "7E5", "7EE", "7E6", "7EF", "7E7",
}

// Scanner is the OBD-II service: it owns an ELM driver connection and
// turns Mode 01/02/03/04/07/09/0A requests into decoded results.
type Scanner struct {
	Driver *elm.Driver

	connected bool
}

// NewScanner builds a Scanner around an already-constructed driver (not yet
// opened).
func NewScanner(d *elm.Driver) *Scanner {
	return &Scanner{Driver: d}
}

// Connect opens the adapter and verifies the vehicle answers 0100, falling
// back to protocol negotiation before giving up.
func (s *Scanner) Connect() error {
	if err := s.Driver.Open(); err != nil {
		return err
	}

	if s.testVehicleConnectionRetry(3, time.Second) {
		s.connected = true
		return nil
	}

	_, _ = s.Driver.NegotiateProtocol(1, 600*time.Millisecond)

	if !s.testVehicleConnectionRetry(2, time.Second) {
		s.connected = false
		return fmt.Errorf("no response from vehicle ECU")
	}

	s.connected = true
	return nil
}

func (s *Scanner) testVehicleConnectionRetry(retries int, delay time.Duration) bool {
	for attempt := 0; attempt <= retries; attempt++ {
		if s.Driver.TestVehicleConnection() {
			return true
		}
		if attempt < retries {
			time.Sleep(delay)
		}
	}
	return false
}

// Disconnect closes the underlying adapter connection.
func (s *Scanner) Disconnect() {
	s.connected = false
	_ = s.Driver.Close()
}

// IsConnected reports whether Connect succeeded and the driver still
// reports an open transport.
func (s *Scanner) IsConnected() bool {
	if !s.connected {
		return false
	}
	if !s.Driver.IsConnected() {
		s.connected = false
		return false
	}
	return true
}

func (s *Scanner) checkConnected() error {
	if !s.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// sendOBDLinesRetry resends command up to retries times until the response
// doesn't look like one of the known error strings.
func (s *Scanner) sendOBDLinesRetry(command string, retries int) ([]string, error) {
	var lastLines []string
	for attempt := 0; attempt <= retries; attempt++ {
		lines, err := s.Driver.SendOBDLines(command)
		if err != nil {
			if _, ok := err.(*transport.DeviceDisconnected); ok {
				s.connected = false
				return nil, ErrConnectionLost
			}
			return nil, err
		}
		lastLines = lines
		joined := strings.ToUpper(strings.Join(lines, " "))
		hasError := false
		for _, e := range errorResponses {
			if strings.Contains(joined, e) {
				hasError = true
				break
			}
		}
		if !hasError {
			return lines, nil
		}
		if attempt < retries {
			time.Sleep(150 * time.Millisecond)
		}
	}
	return lastLines, nil
}

// queryPayload sends command and returns the (ecu, payload) pair matching
// expectedPrefix.
func (s *Scanner) queryPayload(command string, expectedPrefix []string) (string, []string, bool, error) {
	if err := s.checkConnected(); err != nil {
		return "", nil, false, err
	}

	lines, err := s.sendOBDLinesRetry(command, 1)
	if err != nil {
		return "", nil, false, err
	}

	grouped := protocol.GroupByECU(lines, s.Driver.HeadersOn)
	merged := protocol.MergePayloads(grouped, s.Driver.HeadersOn)

	var prefer []string
	if s.Driver.HeadersOn {
		prefer = ecuPrefer
	}

	ecu, payload, ok := protocol.FindOBDResponsePayload(merged, expectedPrefix, prefer)
	return ecu, payload, ok, nil
}
