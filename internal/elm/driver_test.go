package elm

import (
	"strings"
	"testing"
	"time"

	"github.com/anodyne74/obdcore/testing/simulator"
)

func newTestDriver() *Driver {
	d := New(simulator.NewELM327(simulator.DefaultData()))
	d.Timeout = 2 * time.Second
	d.SilenceTimeout = 20 * time.Millisecond
	d.MinWaitBeforeSilence = 20 * time.Millisecond
	return d
}

func TestDriverOpen(t *testing.T) {
	d := newTestDriver()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.IsConnected() {
		t.Error("expected driver to be connected after Open")
	}
	if !strings.Contains(d.ElmVersion, "ELM327") {
		t.Errorf("ElmVersion = %q", d.ElmVersion)
	}
}

func TestDriverTestVehicleConnection(t *testing.T) {
	d := newTestDriver()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.TestVehicleConnection() {
		t.Error("expected TestVehicleConnection to succeed against the simulator")
	}
}

func TestDriverClose(t *testing.T) {
	d := newTestDriver()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d.IsConnected() {
		t.Error("expected driver to be disconnected after Close")
	}
}

func TestDriverRawLoggerFires(t *testing.T) {
	d := newTestDriver()

	var calls []string
	d.RawLogger = func(direction, command string, lines []string) {
		calls = append(calls, direction+":"+command)
	}

	if _, err := d.SendRawLines("ATZ", time.Second); err != nil {
		t.Fatalf("SendRawLines: %v", err)
	}
	if len(calls) != 2 || calls[0] != "TX:ATZ" || calls[1] != "RX:ATZ" {
		t.Errorf("RawLogger calls = %v", calls)
	}
}

func TestExtractVersion(t *testing.T) {
	if got := extractVersion("ELM327 v1.5"); got != "ELM327 v1.5" {
		t.Errorf("extractVersion = %q", got)
	}
	if got := extractVersion(""); got != "unknown" {
		t.Errorf("extractVersion empty = %q", got)
	}
}
