package capture

import (
	"fmt"
	"sync"
	"time"

	"github.com/anodyne74/obdcore/internal/transport"
)

// Recorder buffers trace events into a Session while running, and saves
// the session to disk when stopped.
type Recorder struct {
	session *Session
	running bool
	mu      sync.Mutex
}

// NewRecorder creates a recorder for a session tagged with vehicleInfo
// (typically a VIN or "unknown" before one is read).
func NewRecorder(vehicleInfo string) *Recorder {
	return &Recorder{session: NewSession(vehicleInfo)}
}

// Start begins accepting events via Record or Logger.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("recorder is already running")
	}
	r.running = true
	return nil
}

// Stop ends the session and persists it to disk.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("recorder is not running")
	}
	r.running = false
	return r.session.Save()
}

// Record appends a single event to the session, returning an error if the
// recorder is not running.
func (r *Recorder) Record(direction, command string, lines []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("recorder is not running")
	}

	r.session.AddEvent(Event{
		Timestamp: time.Now(),
		Direction: direction,
		Command:   command,
		Lines:     lines,
	})
	return nil
}

// Logger returns a transport.RawLogger bound to this recorder, suitable
// for elm.Driver.RawLogger. Events recorded while the recorder isn't
// running are silently dropped rather than returned as an error, since
// the driver has no way to act on a logging failure.
func (r *Recorder) Logger() transport.RawLogger {
	return func(direction, command string, lines []string) {
		_ = r.Record(direction, command, lines)
	}
}

// SetMetadata adds metadata to the underlying session.
func (r *Recorder) SetMetadata(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.SetMetadata(key, value)
}

// IsRunning reports whether the recorder is currently accepting events.
func (r *Recorder) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
