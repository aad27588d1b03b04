package obd

// SelfTestResult summarizes a quick connectivity/plausibility check used
// by integration tests (reached through session.Session.SelfTest).
type SelfTestResult struct {
	ConnectionOK bool
	ProtocolName string
	RPMReading   *Reading
	VINValid     bool
	Errors       []string
}

// SelfTest probes Mode 01 PID 0C and the VIN, without requiring a DTC read,
// to give a fast yes/no on whether the adapter and vehicle are responding
// sanely.
func (s *Scanner) SelfTest() *SelfTestResult {
	result := &SelfTestResult{ConnectionOK: s.IsConnected()}
	if !result.ConnectionOK {
		result.Errors = append(result.Errors, "not connected")
		return result
	}

	result.ProtocolName = s.Driver.GetProtocol()

	if reading, err := s.ReadPID("0C", 2, false); err == nil && reading != nil {
		result.RPMReading = reading
	} else if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if info, err := s.GetVehicleInfo(); err == nil && info != nil {
		result.VINValid = info.VIN != ""
	} else if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	return result
}
