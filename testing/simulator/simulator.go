// Package simulator fakes an ELM327 adapter's ASCII line protocol: it
// answers the AT-command open sequence and a handful of Mode 01/03/04/09
// requests over an in-memory io.ReadWriteCloser, so transport/elm/obd
// tests can drive the real driver code without hardware.
package simulator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// engineECU is the canonical engine-pair rx ID the simulator answers as.
const engineECU = "7E8"

// SimulatedData is the vehicle state the simulator reports, mutated by
// Tick for tests that want values to drift across repeated reads.
type SimulatedData struct {
	RPM         float64
	SpeedKPH    float64
	CoolantC    float64
	VIN         string
	StoredDTCs  []string // e.g. "P0301"
	MILOn       bool
	HeadersOn   bool
	Protocol    string // ATSP code, e.g. "6"
}

// DefaultData returns a plausible idle vehicle state for tests that don't
// care about the exact numbers.
func DefaultData() SimulatedData {
	return SimulatedData{
		RPM:       800,
		SpeedKPH:  0,
		CoolantC:  85,
		VIN:       "1C4RJFAG5FC123456",
		Protocol:  "6",
		HeadersOn: true,
	}
}

// ELM327 simulates an adapter over an in-memory duplex channel: Write
// feeds it commands terminated by '\r', and Read drains whatever response
// that command produced, terminated by the '>' prompt the same way a real
// adapter's does.
type ELM327 struct {
	mu sync.Mutex

	data      SimulatedData
	cmdBuf    []byte
	outBuf    []byte
	closed    bool
	elmHeader string // ATSH-set request header, empty = default 7DF
}

// NewELM327 builds a simulator seeded with data.
func NewELM327(data SimulatedData) *ELM327 {
	return &ELM327{data: data}
}

// Tick randomizes RPM/speed/coolant within plausible ranges, mimicking a
// running engine's periodic telemetry broadcast.
func (e *ELM327) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.RPM = 700 + rand.Float64()*2500
	e.data.SpeedKPH = rand.Float64() * 120
	e.data.CoolantC = 75 + rand.Float64()*25
}

// Write accepts one or more '\r'-terminated commands and queues their
// responses for Read.
func (e *ELM327) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, fmt.Errorf("simulator: write on closed connection")
	}

	e.cmdBuf = append(e.cmdBuf, p...)
	for {
		idx := indexByte(e.cmdBuf, '\r')
		if idx < 0 {
			break
		}
		cmd := strings.TrimSpace(string(e.cmdBuf[:idx]))
		e.cmdBuf = e.cmdBuf[idx+1:]
		if cmd == "" {
			continue
		}
		e.outBuf = append(e.outBuf, e.respond(cmd)...)
	}
	return len(p), nil
}

// Read drains buffered response bytes. Returns (0, nil) when nothing is
// queued yet, matching a physical adapter's not-ready-yet read.
func (e *ELM327) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.outBuf) == 0 {
		return 0, nil
	}
	n := copy(p, e.outBuf)
	e.outBuf = e.outBuf[n:]
	return n, nil
}

// Close marks the connection closed; further writes fail.
func (e *ELM327) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Flush clears any buffered output, matching transport.Transport.Flush.
func (e *ELM327) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outBuf = nil
	return nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// respond dispatches cmd to the matching AT/OBD handler and formats the
// result as CRLF-ish adapter output terminated by the '>' prompt.
func (e *ELM327) respond(cmd string) []byte {
	upper := strings.ToUpper(cmd)
	var lines []string

	switch {
	case upper == "ATZ":
		lines = []string{"ELM327 v1.5"}
	case strings.HasPrefix(upper, "ATE"), strings.HasPrefix(upper, "ATL"),
		strings.HasPrefix(upper, "ATS0"), strings.HasPrefix(upper, "ATS1"),
		strings.HasPrefix(upper, "ATAT"), upper == "ATAL":
		lines = []string{"OK"}
	case upper == "ATH1":
		e.data.HeadersOn = true
		lines = []string{"OK"}
	case upper == "ATH0":
		e.data.HeadersOn = false
		lines = []string{"OK"}
	case strings.HasPrefix(upper, "ATSH"):
		e.elmHeader = strings.TrimPrefix(upper, "ATSH")
		lines = []string{"OK"}
	case strings.HasPrefix(upper, "ATSP"):
		code := strings.TrimPrefix(upper, "ATSP")
		if code != "0" && code != "" {
			e.data.Protocol = code
		}
		lines = []string{"OK"}
	case upper == "ATDPN":
		lines = []string{"A" + e.data.Protocol}
	case upper == "0100":
		lines = e.frame("41 00 98 3B 80 11")
	case upper == "0101":
		mil := byte(0)
		if e.data.MILOn {
			mil = 0x80
		}
		mil |= byte(len(e.data.StoredDTCs)) & 0x7F
		lines = e.frame(fmt.Sprintf("41 01 %02X 00 00 00", mil))
	case upper == "010C":
		rpm := uint16(e.data.RPM * 4)
		lines = e.frame(fmt.Sprintf("41 0C %02X %02X", byte(rpm>>8), byte(rpm)))
	case upper == "010D":
		lines = e.frame(fmt.Sprintf("41 0D %02X", byte(e.data.SpeedKPH)))
	case upper == "0105":
		lines = e.frame(fmt.Sprintf("41 05 %02X", byte(e.data.CoolantC+40)))
	case upper == "03":
		lines = e.dtcFrame("43", e.data.StoredDTCs)
	case upper == "07":
		lines = e.dtcFrame("47", nil)
	case upper == "0A":
		lines = e.dtcFrame("4A", nil)
	case upper == "04":
		e.data.StoredDTCs = nil
		e.data.MILOn = false
		lines = e.frame("44")
	case upper == "0902":
		lines = e.vinFrame()
	default:
		lines = []string{"NO DATA"}
	}

	out := strings.Join(lines, "\r") + "\r\r>"
	return []byte(out)
}

// frame formats a hex payload as a single-frame ISO-TP line, prefixed with
// the engine ECU header and PCI length byte when headers are on.
func (e *ELM327) frame(hexPayload string) []string {
	tokens := strings.Fields(hexPayload)
	if !e.data.HeadersOn {
		return []string{strings.Join(tokens, "")}
	}
	pci := fmt.Sprintf("%02X", len(tokens))
	return []string{engineECU + " " + pci + " " + strings.Join(tokens, " ")}
}

func (e *ELM327) dtcFrame(prefix string, codes []string) []string {
	var tokens []string
	tokens = append(tokens, prefix)
	for _, code := range codes {
		hi, lo, err := encodeDTC(code)
		if err != nil {
			continue
		}
		tokens = append(tokens, fmt.Sprintf("%02X", hi), fmt.Sprintf("%02X", lo))
	}
	return e.frame(strings.Join(tokens, " "))
}

// vinFrame emits the Mode 09 PID 02 VIN response as a single (already
// reassembled) multi-byte frame: "49 02 01" marker plus ASCII-as-hex VIN
// bytes, matching what obd.GetVehicleInfo expects after ISO-TP reassembly.
func (e *ELM327) vinFrame() []string {
	tokens := []string{"49", "02", "01"}
	for _, c := range e.data.VIN {
		tokens = append(tokens, fmt.Sprintf("%02X", c))
	}
	return e.frame(strings.Join(tokens, " "))
}

// encodeDTC converts a 5-character code like "P0301" into its two raw DTC
// bytes — the inverse of internal/dtc.DecodeBytes.
func encodeDTC(code string) (byte, byte, error) {
	if len(code) != 5 {
		return 0, 0, fmt.Errorf("simulator: malformed DTC %q", code)
	}
	var typeBits byte
	switch code[0] {
	case 'P':
		typeBits = 0
	case 'C':
		typeBits = 1
	case 'B':
		typeBits = 2
	case 'U':
		typeBits = 3
	default:
		return 0, 0, fmt.Errorf("simulator: unknown DTC type %q", code[0])
	}
	n, err := strconv.ParseUint(code[1:], 16, 16)
	if err != nil {
		return 0, 0, err
	}
	hi := byte(typeBits<<6) | byte((n>>8)&0x3F)
	lo := byte(n & 0xFF)
	return hi, lo, nil
}
