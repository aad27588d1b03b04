package capture

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSession(t *testing.T) {
	vehicleInfo := "Test Vehicle"
	session := NewSession(vehicleInfo)

	if session.VehicleInfo != vehicleInfo {
		t.Errorf("Expected vehicle info %s, got %s", vehicleInfo, session.VehicleInfo)
	}

	if session.StartTime.IsZero() {
		t.Error("Expected start time to be set")
	}

	if len(session.Events) != 0 {
		t.Error("Expected empty events slice")
	}
}

func TestAddEvent(t *testing.T) {
	session := NewSession("Test Vehicle")
	session.AddEvent(Event{Direction: "TX", Command: "010C"})

	if len(session.Events) != 1 {
		t.Fatal("Expected one event in session")
	}
	if session.Events[0].Command != "010C" {
		t.Errorf("Expected command 010C, got %s", session.Events[0].Command)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "capture_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	session := NewSession("Test Vehicle")
	session.filePath = filepath.Join(tempDir, "test_session.json")
	session.AddEvent(Event{Direction: "TX", Command: "010C"})
	session.AddEvent(Event{Direction: "RX", Command: "010C", Lines: []string{"41 0C 1A F8"}})

	if err := session.Save(); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	if _, err := os.Stat(session.filePath); os.IsNotExist(err) {
		t.Fatal("Expected session file to exist")
	}

	loaded, err := LoadSession(session.filePath)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if len(loaded.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(loaded.Events))
	}
	if loaded.Events[1].Lines[0] != "41 0C 1A F8" {
		t.Errorf("Expected RX lines preserved, got %v", loaded.Events[1].Lines)
	}
}

func TestRecorder(t *testing.T) {
	recorder := NewRecorder("Test Vehicle")

	if err := recorder.Start(); err != nil {
		t.Fatalf("Failed to start recorder: %v", err)
	}
	if !recorder.IsRunning() {
		t.Error("Expected recorder to be running")
	}

	if err := recorder.Record("TX", "010C", nil); err != nil {
		t.Errorf("Failed to record event: %v", err)
	}

	logger := recorder.Logger()
	logger("RX", "010C", []string{"41 0C 1A F8"})

	if err := recorder.Stop(); err != nil {
		t.Errorf("Failed to stop recorder: %v", err)
	}
	if recorder.IsRunning() {
		t.Error("Expected recorder to be stopped")
	}
	if len(recorder.session.Events) != 2 {
		t.Fatalf("Expected 2 recorded events, got %d", len(recorder.session.Events))
	}
}

func TestRecorderRejectsWhenStopped(t *testing.T) {
	recorder := NewRecorder("Test Vehicle")
	if err := recorder.Record("TX", "0100", nil); err == nil {
		t.Error("Expected error recording before Start")
	}
}
