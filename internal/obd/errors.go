package obd

import "errors"

// ErrNotConnected is returned when an operation is attempted before Connect.
var ErrNotConnected = errors.New("not connected to vehicle")

// ErrConnectionLost is returned when the adapter disconnects mid-session.
var ErrConnectionLost = errors.New("device disconnected")

// errorResponses are adapter reply substrings that mean "no usable data",
// checked case-insensitively against the joined response line.
var errorResponses = []string{"NO DATA", "UNABLE TO CONNECT", "ERROR", "STOPPED", "BUS", "CAN ERROR", "?", "BUFFER FULL"}
