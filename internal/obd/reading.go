package obd

import "strings"

// Reading is a single decoded Mode 01 PID value.
type Reading struct {
	Name   string
	Value  *float64
	Unit   string
	PID    string
	RawHex string
	ECU    string
}

// ReadPID reads a single Mode 01 PID. allowEmpty, when true, still returns a
// Reading (with a nil Value) if the adapter answered but the formula
// couldn't decode it; otherwise an undecodable PID yields (nil, nil).
func (s *Scanner) ReadPID(pid string, roundTo int, allowEmpty bool) (*Reading, error) {
	pid = normalizePID(strings.ToUpper(strings.TrimSpace(pid)))
	info, ok := PIDs[pid]
	if !ok {
		return nil, nil
	}

	ecu, payload, found, err := s.queryPayload("01"+pid, []string{"41", pid})
	if err != nil {
		return nil, err
	}
	if !found || len(payload) < 3 {
		return nil, nil
	}
	if !strings.EqualFold(payload[0], "41") || !strings.EqualFold(payload[1], pid) {
		return nil, nil
	}

	dataHex := strings.ToUpper(strings.Join(payload[2:], ""))
	value, decoded := DecodePIDResponse(pid, dataHex)
	if !decoded && !allowEmpty {
		return nil, nil
	}

	reading := &Reading{Name: info.Name, Unit: info.Unit, PID: pid, RawHex: dataHex, ECU: ecu}
	if decoded {
		rounded := Round(value, roundTo)
		reading.Value = &rounded
	}
	return reading, nil
}

// ReadLiveData reads a set of Mode 01 PIDs (DiagnosticPIDs if pids is nil),
// deduplicating while preserving order and skipping PIDs that fail to
// decode rather than aborting the whole scan.
func (s *Scanner) ReadLiveData(pids []string, roundTo int) map[string]*Reading {
	if pids == nil {
		pids = DiagnosticPIDs
	}

	seen := make(map[string]bool)
	var normalized []string
	for _, p := range pids {
		p = normalizePID(strings.ToUpper(strings.TrimSpace(p)))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		normalized = append(normalized, p)
	}

	results := make(map[string]*Reading)
	for _, pid := range normalized {
		reading, err := s.ReadPID(pid, roundTo, false)
		if err != nil || reading == nil {
			continue
		}
		results[pid] = reading
	}
	return results
}
