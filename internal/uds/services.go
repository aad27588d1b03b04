// Package uds implements ISO 14229 Unified Diagnostic Services requests
// over a configured ELM/ISO-TP transport: Read DID, Routine Control, Read
// DTC Information, Tester Present/Session Control, and raw send.
package uds

import "fmt"

// serviceNames maps a SID to its ISO 14229 service name for logging/errors.
var serviceNames = map[byte]string{
	0x10: "Diagnostic Session Control",
	0x11: "ECU Reset",
	0x19: "Read DTC Information",
	0x22: "Read Data By Identifier",
	0x23: "Read Memory By Address",
	0x27: "Security Access",
	0x2E: "Write Data By Identifier",
	0x2F: "Input Output Control",
	0x31: "Routine Control",
	0x34: "Request Download",
	0x36: "Transfer Data",
	0x37: "Request Transfer Exit",
	0x3E: "Tester Present",
}

// NegativeResponseSID is the fixed SID (0x7F) prefixing every negative
// response.
const NegativeResponseSID = 0x7F

// ServiceName returns the human name of sid, or "Unknown (0xXX)".
func ServiceName(sid byte) string {
	if name, ok := serviceNames[sid]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", sid)
}

// PositiveResponseSID returns the SID a positive response carries for a
// request of sid: sid + 0x40.
func PositiveResponseSID(sid byte) byte { return sid + 0x40 }

// BuildRequest concatenates sid and data into a raw request frame.
func BuildRequest(sid byte, data []byte) []byte {
	out := make([]byte, 0, 1+len(data))
	out = append(out, sid)
	return append(out, data...)
}

// IsNegativeResponse reports whether payload is a well-formed 0x7F reply.
func IsNegativeResponse(payload []byte) bool {
	return len(payload) >= 3 && payload[0] == NegativeResponseSID
}

// ParseNegative extracts (serviceID, NRC) from a 0x7F response.
func ParseNegative(payload []byte) (byte, byte) {
	if !IsNegativeResponse(payload) {
		return 0, 0
	}
	return payload[1], payload[2]
}
