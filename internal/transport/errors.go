package transport

import "fmt"

// DeviceDisconnected means the underlying handle reports the adapter is
// gone (closed port, "device not configured", USB unplug).
type DeviceDisconnected struct {
	cause error
}

func (e *DeviceDisconnected) Error() string { return "device disconnected: " + e.cause.Error() }
func (e *DeviceDisconnected) Unwrap() error { return e.cause }

// NewDeviceDisconnected wraps cause as a DeviceDisconnected.
func NewDeviceDisconnected(cause error) error { return &DeviceDisconnected{cause: cause} }

// CommunicationError covers any other transport I/O failure.
type CommunicationError struct {
	cause error
}

func (e *CommunicationError) Error() string { return "communication error: " + e.cause.Error() }
func (e *CommunicationError) Unwrap() error { return e.cause }

// NewCommunicationError wraps cause as a CommunicationError.
func NewCommunicationError(cause error) error { return &CommunicationError{cause: cause} }

var errUnsupportedMock = fmt.Errorf("mock transport has no byte-level backing, use testing/simulator instead")

func errUnsupportedType(t string) error {
	return fmt.Errorf("unsupported transport type: %s", t)
}

// classifyIOError turns a raw transport I/O error into DeviceDisconnected or
// CommunicationError, inspecting the message for the usual OS disconnect
// phrasing tarm/serial and net surface.
func classifyIOError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, needle := range []string{"device not configured", "disconnected", "no such device", "input/output error", "broken pipe"} {
		if containsFold(msg, needle) {
			return NewDeviceDisconnected(err)
		}
	}
	return NewCommunicationError(err)
}

func containsFold(s, substr string) bool {
	sl, subl := len(s), len(substr)
	if subl == 0 {
		return true
	}
	for i := 0; i+subl <= sl; i++ {
		if equalFold(s[i:i+subl], substr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
