// Package elm drives an ELM327-compatible adapter: the AT-command open
// sequence, protocol negotiation, and raw-line command exchange that every
// higher-level service (OBD, UDS, K-Line) is built on.
package elm

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/transport"
)

var versionRe = regexp.MustCompile(`(?i)(ELM327\s*v?\s*[\w.]+)`)
var headerLikeRe = regexp.MustCompile(`^[0-9A-Fa-f]{3,8}\s`)

// protocolNames maps the single hex digit ATDPN reports to a human name.
var protocolNames = map[string]string{
	"1": "SAE J1850 PWM",
	"2": "SAE J1850 VPW",
	"3": "ISO 9141-2",
	"4": "ISO 14230-4 KWP (5 baud init)",
	"5": "ISO 14230-4 KWP (fast init)",
	"6": "ISO 15765-4 CAN (11 bit, 500 kbaud)",
	"7": "ISO 15765-4 CAN (29 bit, 500 kbaud)",
	"8": "ISO 15765-4 CAN (11 bit, 250 kbaud)",
	"9": "ISO 15765-4 CAN (29 bit, 250 kbaud)",
	"A": "SAE J1939 CAN",
}

// negotiationCandidates is the protocol-code search order used when auto
// protocol (ATSP0) fails to answer 0100.
var negotiationCandidates = []string{"0", "6", "7", "8", "9"}

// Driver owns one adapter connection's negotiated state: protocol, header
// mode, and the raw transport handle.
type Driver struct {
	Transport transport.Transport

	Timeout              time.Duration
	SilenceTimeout       time.Duration
	MinWaitBeforeSilence time.Duration

	ElmVersion string
	HeadersOn  bool
	connected  bool

	Logger    *log.Logger
	RawLogger transport.RawLogger
}

// New wraps t with default ELM327 timing. HeadersOn defaults to true for
// robust multi-ECU parsing.
func New(t transport.Transport) *Driver {
	return &Driver{
		Transport:            t,
		Timeout:              3 * time.Second,
		SilenceTimeout:       250 * time.Millisecond,
		MinWaitBeforeSilence: 750 * time.Millisecond,
		HeadersOn:            true,
	}
}

func (d *Driver) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// IsConnected reports whether Open succeeded and Close hasn't been called.
func (d *Driver) IsConnected() bool { return d.connected }

// Open resets and initializes the adapter: ATZ, ATE0, ATL0, ATS0, headers
// mode, ATAT1, ATSP0, best-effort ATAL. With headers on it then sends 0100
// and falls back to headers off if no reply line starts with a header.
func (d *Driver) Open() error {
	resp, err := d.SendRawLines("ATZ", 2*time.Second)
	if err != nil {
		return err
	}
	d.ElmVersion = extractVersion(strings.Join(resp, "\n"))

	if _, err := d.SendRawLines("ATE0", time.Second); err != nil {
		return err
	}
	if _, err := d.SendRawLines("ATL0", time.Second); err != nil {
		return err
	}
	if _, err := d.SendRawLines("ATS0", time.Second); err != nil {
		return err
	}

	if d.HeadersOn {
		if _, err := d.SendRawLines("ATH1", time.Second); err != nil {
			return err
		}
	} else {
		if _, err := d.SendRawLines("ATH0", time.Second); err != nil {
			return err
		}
	}

	if _, err := d.SendRawLines("ATAT1", time.Second); err != nil {
		return err
	}
	if _, err := d.SendRawLines("ATSP0", time.Second); err != nil {
		return err
	}
	// Long-message support: best effort, some clones reject it.
	_, _ = d.SendRawLines("ATAL", time.Second)

	if d.HeadersOn {
		lines, err := d.SendRawLines("0100", maxDuration(d.Timeout, 2*time.Second))
		if err == nil {
			looksLikeHeader := false
			for _, ln := range lines {
				if headerLikeRe.MatchString(strings.ToUpper(strings.TrimSpace(ln)) + " ") {
					looksLikeHeader = true
					break
				}
			}
			if !looksLikeHeader {
				d.HeadersOn = false
				_, _ = d.SendRawLines("ATH0", time.Second)
				_, _ = d.SendRawLines("ATS0", time.Second)
			}
		}
	}

	d.connected = true
	d.logger().Printf("elm: connected, version=%q headers_on=%v", d.ElmVersion, d.HeadersOn)
	return nil
}

func extractVersion(resp string) string {
	s := strings.TrimSpace(resp)
	if s == "" {
		return "unknown"
	}
	if m := versionRe.FindString(s); m != "" {
		return strings.TrimSpace(m)
	}
	if len(s) > 40 {
		return strings.TrimSpace(s[:40])
	}
	return s
}

// Close closes the underlying transport.
func (d *Driver) Close() error {
	d.connected = false
	if d.Transport == nil {
		return nil
	}
	return d.Transport.Close()
}

// SendRawLines sends command and returns the adapter's response lines.
// timeout<=0 uses d.Timeout.
func (d *Driver) SendRawLines(command string, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = d.Timeout
	}
	lines, err := transport.Exchange(d.Transport, command, timeout, d.SilenceTimeout, d.MinWaitBeforeSilence, d.RawLogger)
	if err != nil {
		if _, ok := err.(*transport.DeviceDisconnected); ok {
			d.connected = false
		}
		return nil, err
	}
	return lines, nil
}

// SendRaw sends command and returns the response lines joined by a space.
func (d *Driver) SendRaw(command string, timeout time.Duration) (string, error) {
	lines, err := d.SendRawLines(command, timeout)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, " "), nil
}

// SendOBDLines sends an OBD/UDS hex command with the standard 2s floor.
func (d *Driver) SendOBDLines(command string) ([]string, error) {
	return d.SendRawLines(command, maxDuration(d.Timeout, 2*time.Second))
}

// TestVehicleConnection issues 0100 and reports whether 4100 appears.
func (d *Driver) TestVehicleConnection() bool {
	lines, err := d.SendOBDLines("0100")
	if err != nil {
		return false
	}
	joined := strings.ToUpper(strings.Join(lines, ""))
	return strings.Contains(joined, "4100")
}

// NegotiateProtocol iterates negotiationCandidates until one answers 0100,
// restoring ATSP0 on failure.
func (d *Driver) NegotiateProtocol(retries int, interAttemptDelay time.Duration) (string, error) {
	if retries <= 0 {
		retries = 1
	}
	if interAttemptDelay <= 0 {
		interAttemptDelay = 500 * time.Millisecond
	}

	for _, code := range negotiationCandidates {
		for attempt := 0; attempt < retries; attempt++ {
			if _, err := d.SendRawLines("ATSP"+code, time.Second); err != nil {
				continue
			}
			time.Sleep(50 * time.Millisecond)
			lines, err := d.SendRawLines("0100", maxDuration(d.Timeout, 2*time.Second))
			if err != nil {
				continue
			}
			joined := strings.ToUpper(strings.ReplaceAll(strings.Join(lines, ""), " ", ""))
			if strings.Contains(joined, "4100") {
				return code, nil
			}
			time.Sleep(interAttemptDelay)
		}
	}

	_, _ = d.SendRawLines("ATSP0", time.Second)
	return "", transport.NewCommunicationError(fmt.Errorf("protocol negotiation failed: 0100 did not respond on any candidate"))
}

// GetProtocol reads back the active protocol via ATDPN.
func (d *Driver) GetProtocol() string {
	resp, err := d.SendRaw("ATDPN", time.Second)
	if err != nil {
		return "Unknown (disconnected)"
	}
	resp = strings.ToUpper(strings.TrimSpace(resp))

	var code string
	for i := len(resp) - 1; i >= 0; i-- {
		r := resp[i]
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			code = string(r)
			break
		}
	}
	if code != "" {
		if name, ok := protocolNames[code]; ok {
			return name
		}
	}
	return "Unknown: " + resp
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
