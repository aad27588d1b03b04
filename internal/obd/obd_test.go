package obd

import (
	"testing"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/testing/simulator"
)

func newTestScanner(t *testing.T, data simulator.SimulatedData) *Scanner {
	t.Helper()
	d := elm.New(simulator.NewELM327(data))
	d.Timeout = 2 * time.Second
	d.SilenceTimeout = 20 * time.Millisecond
	d.MinWaitBeforeSilence = 20 * time.Millisecond

	s := NewScanner(d)
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return s
}

func TestScannerReadPID(t *testing.T) {
	data := simulator.DefaultData()
	data.RPM = 2000
	s := newTestScanner(t, data)

	reading, err := s.ReadPID("0C", 2, false)
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if reading.Value == nil {
		t.Fatal("expected non-nil RPM reading")
	}
	if *reading.Value < 1900 || *reading.Value > 2100 {
		t.Errorf("RPM reading = %v, want ~2000", *reading.Value)
	}
}

func TestScannerReadDTCs(t *testing.T) {
	data := simulator.DefaultData()
	data.StoredDTCs = []string{"P0301"}
	data.MILOn = true
	s := newTestScanner(t, data)

	codes, err := s.ReadDTCs("03")
	if err != nil {
		t.Fatalf("ReadDTCs: %v", err)
	}
	if len(codes) != 1 || codes[0] != "P0301" {
		t.Errorf("ReadDTCs = %v, want [P0301]", codes)
	}
}

func TestScannerClearDTCs(t *testing.T) {
	data := simulator.DefaultData()
	data.StoredDTCs = []string{"P0301"}
	s := newTestScanner(t, data)

	ok, err := s.ClearDTCs()
	if err != nil {
		t.Fatalf("ClearDTCs: %v", err)
	}
	if !ok {
		t.Error("expected ClearDTCs to succeed")
	}
}

func TestScannerGetMILStatus(t *testing.T) {
	data := simulator.DefaultData()
	data.MILOn = true
	data.StoredDTCs = []string{"P0301"}
	s := newTestScanner(t, data)

	milOn, count, err := s.GetMILStatus()
	if err != nil {
		t.Fatalf("GetMILStatus: %v", err)
	}
	if !milOn {
		t.Error("expected MIL on")
	}
	if count != 1 {
		t.Errorf("expected DTC count 1, got %d", count)
	}
}

func TestScannerGetVehicleInfo(t *testing.T) {
	data := simulator.DefaultData()
	data.VIN = "1HGCM82633A123456"
	s := newTestScanner(t, data)

	info, err := s.GetVehicleInfo()
	if err != nil {
		t.Fatalf("GetVehicleInfo: %v", err)
	}
	if info.VIN != data.VIN {
		t.Errorf("VIN = %q, want %q", info.VIN, data.VIN)
	}
}

func TestScannerSelfTest(t *testing.T) {
	data := simulator.DefaultData()
	data.RPM = 1500
	s := newTestScanner(t, data)

	result := s.SelfTest()
	if !result.ConnectionOK {
		t.Fatal("expected connection OK")
	}
	if result.RPMReading == nil || result.RPMReading.Value == nil {
		t.Fatal("expected RPM reading in self-test")
	}
}

func TestDecodePIDResponseRPM(t *testing.T) {
	v, ok := DecodePIDResponse("0C", "1AF8")
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	want := float64(0x1AF8) * 0.25
	if v != want {
		t.Errorf("DecodePIDResponse = %v, want %v", v, want)
	}
}

func TestDecodePIDResponseUnknownPID(t *testing.T) {
	if _, ok := DecodePIDResponse("ZZ", "00"); ok {
		t.Error("expected unknown PID to fail decode")
	}
}

func TestRound(t *testing.T) {
	if got := Round(3.14159, 2); got != 3.14 {
		t.Errorf("Round = %v, want 3.14", got)
	}
}

func TestGetPIDInfoNormalizesSingleDigit(t *testing.T) {
	info, ok := GetPIDInfo("C")
	if !ok {
		t.Fatal("expected single-digit PID to normalize and resolve")
	}
	if info.Code != "0C" {
		t.Errorf("Code = %q, want 0C", info.Code)
	}
}
