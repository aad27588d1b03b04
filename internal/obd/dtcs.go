package obd

import (
	"strings"

	"github.com/anodyne74/obdcore/internal/dtc"
)

// dtcModeRequest/dtcModePrefix cover the three DTC-reading OBD modes.
var dtcModeRequest = map[string]string{"03": "03", "07": "07", "0A": "0A"}
var dtcModePrefix = map[string][]string{"03": {"43"}, "07": {"47"}, "0A": {"4A"}}

// ReadDTCs reads diagnostic trouble codes for mode ("03" stored, "07"
// pending, "0A" permanent) and returns the decoded codes; the status for
// the mode is available from dtc.StatusForMode and is not attached here.
func (s *Scanner) ReadDTCs(mode string) ([]string, error) {
	request, ok := dtcModeRequest[mode]
	if !ok {
		request = "03"
		mode = "03"
	}

	_, payload, found, err := s.queryPayload(request, dtcModePrefix[mode])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	hex := strings.ToUpper(strings.Join(payload, ""))
	return dtc.ParseResponse(hex, mode), nil
}

// ClearDTCs requests Mode 04 and succeeds if the response contains "44".
func (s *Scanner) ClearDTCs() (bool, error) {
	if err := s.checkConnected(); err != nil {
		return false, err
	}
	lines, err := s.sendOBDLinesRetry("04", 1)
	if err != nil {
		return false, err
	}
	joined := strings.ToUpper(strings.Join(lines, ""))
	return strings.Contains(joined, "44"), nil
}

// GetMILStatus reports the malfunction-indicator-lamp state and stored
// code count from Mode 01 PID 01.
func (s *Scanner) GetMILStatus() (bool, int, error) {
	_, payload, found, err := s.queryPayload("0101", []string{"41", "01"})
	if err != nil {
		return false, 0, err
	}
	if !found || len(payload) < 3 {
		return false, 0, nil
	}
	a, err := hexByte(payload[2])
	if err != nil {
		return false, 0, nil
	}
	milOn := a&0x80 != 0
	count := int(a & 0x7F)
	return milOn, count, nil
}
