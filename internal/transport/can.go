package transport

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brutella/can"
)

// CANTransport talks ISO-TP single-frame request/response directly over a
// SocketCAN interface, bypassing the ELM327 AT-command layer entirely. It
// satisfies Transport by translating to/from the same textual
// "<id> <len> <data...>" line format the ELM driver already parses, so the
// rest of the stack doesn't need a CAN-specific code path.
type CANTransport struct {
	bus *can.Bus

	mu      sync.Mutex
	pending bytes.Buffer

	frames chan can.Frame
	done   chan struct{}
}

// defaultTxID/defaultRxID are the functional-request / engine-ECU pair.
// AT commands (ATSH included) are not applied, so these never change.
const (
	defaultTxID uint32 = 0x7DF
	defaultRxID uint32 = 0x7E8
)

// NewCANTransport opens iface (e.g. "can0") for ISO-TP exchange.
func NewCANTransport(iface string) (*CANTransport, error) {
	bus, err := can.NewBusForInterfaceWithName(iface)
	if err != nil {
		return nil, classifyIOError(err)
	}

	t := &CANTransport{
		bus:    bus,
		frames: make(chan can.Frame, 64),
		done:   make(chan struct{}),
	}
	bus.SubscribeFunc(func(frm can.Frame) {
		select {
		case t.frames <- frm:
		default:
		}
	})
	go func() {
		_ = bus.ConnectAndPublish()
	}()

	return t, nil
}

// Write accepts an OBD/UDS request written as ASCII hex (the same thing the
// ELM driver would send as a raw command, e.g. "010C\r") and publishes it
// as a single CAN frame to defaultTxID.
func (t *CANTransport) Write(p []byte) (int, error) {
	cmd := strings.TrimSpace(strings.TrimRight(string(p), "\r\n"))
	if cmd == "" || strings.HasPrefix(strings.ToUpper(cmd), "AT") {
		// AT commands are ELM-adapter-only; a direct CAN link has no
		// equivalent, so treat them as a silent no-op rather than failing
		// the whole init sequence.
		return len(p), nil
	}

	data, err := hexStringToBytes(cmd)
	if err != nil {
		return 0, NewCommunicationError(err)
	}

	frame := can.Frame{ID: defaultTxID, Length: uint8(len(data))}
	copy(frame.Data[:], data)

	if err := t.bus.Publish(frame); err != nil {
		return 0, classifyIOError(err)
	}
	return len(p), nil
}

// Read drains any CAN frames received since the last call, formatted as
// "<id> <len> <data...>" lines terminated by '>' the way an ELM327 would.
func (t *CANTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending.Len() == 0 {
		drained := false
		timeout := time.After(wrapTimeout)
		for !drained {
			select {
			case frm := <-t.frames:
				t.pending.WriteString(formatFrameLine(frm))
				t.pending.WriteByte('\n')
			case <-timeout:
				drained = true
			}
		}
		if t.pending.Len() == 0 {
			t.pending.WriteByte('>')
		} else {
			t.pending.WriteByte('>')
		}
	}
	return t.pending.Read(p)
}

func (t *CANTransport) Close() error {
	close(t.done)
	t.bus.Disconnect()
	return nil
}

// Flush drops any buffered but unread frame lines.
func (t *CANTransport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending.Reset()
	for {
		select {
		case <-t.frames:
		default:
			return nil
		}
	}
}

func formatFrameLine(frm can.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%X %02X", frm.ID, frm.Length)
	for i := 0; i < int(frm.Length) && i < len(frm.Data); i++ {
		fmt.Fprintf(&sb, " %02X", frm.Data[i])
	}
	return sb.String()
}

func hexStringToBytes(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		b, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(b))
	}
	return out, nil
}
