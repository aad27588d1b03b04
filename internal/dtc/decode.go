package dtc

import (
	"fmt"
	"strconv"
	"strings"
)

// Status distinguishes which OBD mode a code was read from.
type Status string

const (
	StatusStored    Status = "stored"
	StatusPending   Status = "pending"
	StatusPermanent Status = "permanent"
)

var modePrefixes = map[string]string{
	"03": "43",
	"07": "47",
	"0A": "4A",
}

var modeStatus = map[string]Status{
	"03": StatusStored,
	"07": StatusPending,
	"0A": StatusPermanent,
}

// DecodeBytes converts a 4 hex-char code (e.g. "0118") into its standard
// "P0118" form: bits 7-6 of the first byte select P/C/B/U, bits 5-4 form
// the second digit, the remaining three hex digits pass through.
func DecodeBytes(hexBytes string) (string, error) {
	if len(hexBytes) != 4 {
		return "", fmt.Errorf("invalid DTC bytes %q: want 4 hex chars", hexBytes)
	}

	firstNibble, err := strconv.ParseInt(hexBytes[0:1], 16, 16)
	if err != nil {
		return "", fmt.Errorf("invalid DTC bytes %q: %w", hexBytes, err)
	}

	typeBits := (firstNibble >> 2) & 0x03
	prefixes := map[int64]string{0: "P", 1: "C", 2: "B", 3: "U"}
	prefix := prefixes[typeBits]

	secondChar := fmt.Sprintf("%d", firstNibble&0x03)
	rest := strings.ToUpper(hexBytes[1:])

	return prefix + secondChar + rest, nil
}

// ParseResponse splits a concatenated hex response from mode 03/07/0A into
// its component DTC codes, dropping the leading service-echo prefix and
// any "0000" (no-code) groups.
func ParseResponse(response, mode string) []string {
	prefix, ok := modePrefixes[mode]
	if !ok {
		prefix = modePrefixes["03"]
	}

	resp := strings.ToUpper(strings.ReplaceAll(response, " ", ""))
	if idx := strings.Index(resp, prefix); idx == 0 {
		resp = resp[len(prefix):]
	}

	var dtcs []string
	for i := 0; i+4 <= len(resp); i += 4 {
		chunk := resp[i : i+4]
		if chunk == "0000" {
			continue
		}
		code, err := DecodeBytes(chunk)
		if err == nil {
			dtcs = append(dtcs, code)
		}
	}
	return dtcs
}

// StatusForMode returns the read-status label for an OBD DTC mode.
func StatusForMode(mode string) Status {
	if s, ok := modeStatus[mode]; ok {
		return s
	}
	return StatusStored
}
