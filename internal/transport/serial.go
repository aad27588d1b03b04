package transport

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// SerialTransport drives a USB-serial ELM327 adapter through tarm/serial.
type SerialTransport struct {
	port *serial.Port
}

// NewSerialTransport opens device at baud (0 ⇒ 38400, the ELM327 default).
func NewSerialTransport(device string, baud int) (*SerialTransport, error) {
	if baud == 0 {
		baud = 38400
	}
	cfg := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: wrapTimeout,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, classifyIOError(err)
	}
	time.Sleep(200 * time.Millisecond)
	return &SerialTransport{port: port}, nil
}

func (s *SerialTransport) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if err != nil {
		return n, classifyIOError(err)
	}
	return n, nil
}

func (s *SerialTransport) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	if err != nil {
		return n, classifyIOError(err)
	}
	return n, nil
}

func (s *SerialTransport) Close() error { return s.port.Close() }

func (s *SerialTransport) Flush() error { return s.port.Flush() }

// BaudRates lists the bauds ELM327 clones commonly answer at, in probe
// order (the 38400 default first), for callers that want to probe when
// the configured rate fails.
var BaudRates = []int{38400, 9600, 115200, 57600, 19200}

// FindSerialPorts ranks candidate device nodes by how likely they are to be
// a USB-serial ELM327 adapter, skipping Bluetooth SPP and debug consoles.
// There is no portable Go equivalent of pyserial's list_ports in the
// example pack, so candidates come from the usual Linux/macOS device-node
// globs and are ranked by name heuristics alone (see DESIGN.md).
func FindSerialPorts() []string {
	patterns := []string{
		"/dev/ttyUSB*",
		"/dev/ttyACM*",
		"/dev/cu.usbserial*",
		"/dev/cu.SLAB_USBtoUART*",
		"/dev/cu.wchusbserial*",
	}

	type candidate struct {
		score int
		path  string
	}
	var candidates []candidate

	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			if _, err := os.Stat(m); err != nil {
				continue
			}
			low := strings.ToLower(m)
			if strings.Contains(low, "bluetooth") || strings.Contains(low, "debug-console") {
				continue
			}
			score := 0
			if strings.Contains(low, "usbserial") || strings.Contains(low, "wchusbserial") {
				score += 2
			}
			if strings.Contains(low, "slab_usbtouart") {
				score += 2
			}
			if strings.Contains(low, "ttyusb") || strings.Contains(low, "ttyacm") {
				score += 2
			}
			candidates = append(candidates, candidate{score: score, path: m})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.path)
	}
	return out
}
