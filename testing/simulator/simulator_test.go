package simulator

import (
	"strings"
	"testing"
	"time"
)

func exchange(t *testing.T, e *ELM327, cmd string) string {
	t.Helper()
	if _, err := e.Write([]byte(cmd + "\r")); err != nil {
		t.Fatalf("Write(%q): %v", cmd, err)
	}

	var out []byte
	deadline := time.Now().Add(time.Second)
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, _ := e.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if strings.Contains(string(out), ">") {
				break
			}
			continue
		}
		time.Sleep(time.Millisecond)
	}
	return string(out)
}

func TestELM327OpenSequence(t *testing.T) {
	e := NewELM327(DefaultData())

	if resp := exchange(t, e, "ATZ"); !strings.Contains(resp, "ELM327") {
		t.Fatalf("ATZ: got %q", resp)
	}
	if resp := exchange(t, e, "ATE0"); !strings.Contains(resp, "OK") {
		t.Fatalf("ATE0: got %q", resp)
	}
	if resp := exchange(t, e, "ATH1"); !strings.Contains(resp, "OK") {
		t.Fatalf("ATH1: got %q", resp)
	}
}

func TestELM327ReadRPM(t *testing.T) {
	data := DefaultData()
	data.RPM = 2000
	e := NewELM327(data)
	exchange(t, e, "ATH1")

	resp := exchange(t, e, "010C")
	if !strings.Contains(resp, "7E8") || !strings.Contains(resp, "41 0C") {
		t.Fatalf("010C: got %q", resp)
	}
}

func TestELM327ReadDTCs(t *testing.T) {
	data := DefaultData()
	data.StoredDTCs = []string{"P0301"}
	data.MILOn = true
	e := NewELM327(data)
	exchange(t, e, "ATH1")

	resp := exchange(t, e, "03")
	if !strings.Contains(resp, "43") {
		t.Fatalf("03: got %q", resp)
	}
}

func TestELM327ClearDTCs(t *testing.T) {
	data := DefaultData()
	data.StoredDTCs = []string{"P0301"}
	e := NewELM327(data)
	exchange(t, e, "ATH1")

	resp := exchange(t, e, "04")
	if !strings.Contains(resp, "44") {
		t.Fatalf("04: got %q", resp)
	}
	if len(e.data.StoredDTCs) != 0 {
		t.Fatalf("expected DTCs cleared, got %v", e.data.StoredDTCs)
	}
}

func TestELM327VIN(t *testing.T) {
	data := DefaultData()
	e := NewELM327(data)
	exchange(t, e, "ATH1")

	resp := exchange(t, e, "0902")
	if !strings.Contains(resp, "49 02 01") {
		t.Fatalf("0902: got %q", resp)
	}
}

func TestEncodeDTCRoundTrip(t *testing.T) {
	hi, lo, err := encodeDTC("P0301")
	if err != nil {
		t.Fatalf("encodeDTC: %v", err)
	}
	if hi != 0x03 || lo != 0x01 {
		t.Fatalf("encodeDTC(P0301) = %02X %02X, want 03 01", hi, lo)
	}
}
