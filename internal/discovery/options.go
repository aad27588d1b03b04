// Package discovery scans a vehicle's CAN bus for responding UDS modules:
// an 11-bit ID range sweep plus a 29-bit functional-addressing probe,
// fingerprinted by VIN/DTC content and matched against the brand catalog.
package discovery

import "time"

// Options tunes a discovery run.
type Options struct {
	IDStart      int
	IDEnd        int
	Timeout      time.Duration
	Retries      int
	Try250k      bool
	Include29Bit bool
	StopOnFirst  bool
	ConfirmVIN   bool
	ConfirmDTCs  bool
	BrandHint    string
}

// DefaultOptions mirrors the original tool's defaults: full 11-bit range,
// 120ms per-probe timeout, try both 500k/250k, stop once the first
// protocol/addressing combination yields modules, confirm VIN but not DTCs.
func DefaultOptions() Options {
	return Options{
		IDStart:     0x700,
		IDEnd:       0x7FF,
		Timeout:     120 * time.Millisecond,
		Retries:     0,
		Try250k:     true,
		StopOnFirst: true,
		ConfirmVIN:  true,
	}
}

// Module is a responding ECU discovered on the bus.
type Module struct {
	TxID             string
	RxID             string
	Protocol         string
	Addressing       string
	Responses        []string
	Confidence       int
	ModuleType       string
	Fingerprint      map[string]any
	RequiresSecurity bool
	AltTxIDs         []string
	Notes            []string
}

// Result is the outcome of a full discovery run.
type Result struct {
	// CorrelationID identifies this run in logs and in any telemetry
	// recorded alongside it, so a multi-protocol sweep's probes can be
	// traced back to the run that issued them.
	CorrelationID string
	Modules       []*Module
	Protocol      string
	Addressing    string
	VIN           string
	Elapsed       time.Duration
	Err           error
}
