package uds

import (
	"testing"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
)

// queuedConn is a minimal io.ReadWriteCloser returning one canned response
// per Read call, used to drive a Client without a real adapter.
type queuedConn struct {
	responses [][]byte
	idx       int
}

func (q *queuedConn) Write(p []byte) (int, error) { return len(p), nil }

func (q *queuedConn) Read(p []byte) (int, error) {
	if q.idx >= len(q.responses) {
		return 0, errTimeout{}
	}
	chunk := q.responses[q.idx]
	q.idx++
	return copy(p, chunk), nil
}

func (q *queuedConn) Close() error { return nil }

type errTimeout struct{}

func (errTimeout) Error() string { return "i/o timeout" }
func (errTimeout) Timeout() bool { return true }

func newTestClient(t *testing.T, brand string, response []byte) *Client {
	t.Helper()
	d := elm.New(&queuedConn{responses: [][]byte{response}})
	d.Timeout = time.Second
	d.SilenceTimeout = 20 * time.Millisecond
	d.MinWaitBeforeSilence = 20 * time.Millisecond

	tr := NewTransport(d, "7E0", "7E8", "6")
	tr.configured = true
	return NewClient(tr, brand)
}

func TestClientReadDID(t *testing.T) {
	// 7E8 header, length 0A, positive response 62 F1 90 "ABCDEFG" (ascii VIN fragment).
	c := newTestClient(t, "jeep", []byte("7E8 0A 62 F1 90 41 42 43 44 45 46 47\r>"))

	result, err := c.ReadDID("F190")
	if err != nil {
		t.Fatalf("ReadDID: %v", err)
	}
	if result.Name != "vin" {
		t.Errorf("Name = %q, want vin", result.Name)
	}
	if result.Value != "ABCDEFG" {
		t.Errorf("Value = %v, want ABCDEFG", result.Value)
	}
}

func TestClientReadDIDNamed(t *testing.T) {
	c := newTestClient(t, "jeep", []byte("7E8 06 62 F1 90 56 49 4E\r>"))

	result, err := c.ReadDIDNamed("vin")
	if err != nil {
		t.Fatalf("ReadDIDNamed: %v", err)
	}
	if result.DID != "F190" {
		t.Errorf("DID = %q, want F190", result.DID)
	}
}

func TestClientReadDIDNamedUnknown(t *testing.T) {
	c := newTestClient(t, "jeep", []byte("7E8 03 7F 22 31\r>"))
	if _, err := c.ReadDIDNamed("not_a_real_did"); err == nil {
		t.Error("expected error for unknown DID name")
	}
}

func TestClientNegativeResponse(t *testing.T) {
	c := newTestClient(t, "jeep", []byte("7E8 03 7F 22 31\r>"))

	_, err := c.ReadDID("F190")
	if err == nil {
		t.Fatal("expected negative response error")
	}
	var neg *NegativeResponse
	if ne, ok := err.(*NegativeResponse); ok {
		neg = ne
	}
	if neg == nil {
		t.Fatalf("expected *NegativeResponse, got %T", err)
	}
	if neg.ServiceID != 0x22 || neg.NRC != 0x31 {
		t.Errorf("NegativeResponse = %+v", neg)
	}
}

func TestClientRoutineControl(t *testing.T) {
	c := newTestClient(t, "jeep", []byte("7E8 04 71 01 02 03\r>"))

	result, err := c.RoutineControl("injector_balance_test", 0, "")
	if err != nil {
		t.Fatalf("RoutineControl: %v", err)
	}
	if result.RoutineID != "0203" {
		t.Errorf("RoutineID = %q, want 0203", result.RoutineID)
	}
}

func TestClientRoutineControlUnknown(t *testing.T) {
	c := newTestClient(t, "jeep", nil)
	if _, err := c.RoutineControl("not_a_routine", 0, ""); err == nil {
		t.Error("expected error for unknown routine")
	}
}

func TestClientReadDTCInfo(t *testing.T) {
	// 59 02 FF, then one 4-byte group: DTCHigh=01 (P0101 shape), mid=01, low=00, status=08.
	c := newTestClient(t, "jeep", []byte("7E8 07 59 02 FF 01 01 00 08\r>"))

	statusMask, groups, err := c.ReadDTCInfo()
	if err != nil {
		t.Fatalf("ReadDTCInfo: %v", err)
	}
	if statusMask != 0xFF {
		t.Errorf("statusMask = %X, want FF", statusMask)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 DTC group, got %d", len(groups))
	}
	if groups[0].Status != 0x08 {
		t.Errorf("Status = %X, want 08", groups[0].Status)
	}
}

func TestFingerprintSummary(t *testing.T) {
	groups := []DTCGroup{
		{DTCHigh: 0x01}, // type bits 00 -> P
		{DTCHigh: 0x41}, // type bits 01 -> C
	}
	summary := FingerprintSummary(groups)
	if summary["P"] != 1 || summary["C"] != 1 {
		t.Errorf("FingerprintSummary = %v", summary)
	}
}

func TestClientTesterPresent(t *testing.T) {
	c := newTestClient(t, "", []byte("7E8 02 7E 00\r>"))
	if err := c.TesterPresent(); err != nil {
		t.Fatalf("TesterPresent: %v", err)
	}
}

func TestClientDiagnosticSessionControl(t *testing.T) {
	c := newTestClient(t, "", []byte("7E8 02 50 01\r>"))
	if err := c.DiagnosticSessionControl(0x01); err != nil {
		t.Fatalf("DiagnosticSessionControl: %v", err)
	}
}

func TestClientRawSend(t *testing.T) {
	c := newTestClient(t, "", []byte("7E8 02 50 01\r>"))
	data, err := c.RawSend(0x10, []byte{0x01})
	if err != nil {
		t.Fatalf("RawSend: %v", err)
	}
	if len(data) != 1 || data[0] != 0x01 {
		t.Errorf("RawSend data = %v", data)
	}
}
