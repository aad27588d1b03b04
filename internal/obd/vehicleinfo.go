package obd

import (
	"strings"

	"github.com/anodyne74/obdcore/internal/protocol"
)

// VehicleInfo bundles adapter/session state with the decoded VIN, when one
// could be recovered.
type VehicleInfo struct {
	Protocol    string
	ELMVersion  string
	HeadersMode string
	VIN         string
	VINECU      string
	VINRaw      string
	MILOn       bool
	DTCCount    int
}

// GetVehicleInfo reads adapter/protocol state plus the VIN (Mode 09 PID
// 02) and MIL/DTC-count summary (Mode 01 PID 01).
func (s *Scanner) GetVehicleInfo() (*VehicleInfo, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	info := &VehicleInfo{
		Protocol:    s.Driver.GetProtocol(),
		ELMVersion:  valueOr(s.Driver.ElmVersion, "unknown"),
		HeadersMode: headersLabel(s.Driver.HeadersOn),
	}

	ecu, payload, found, err := s.queryPayload("0902", []string{"49", "02"})
	if err != nil {
		return nil, err
	}
	if found {
		info.VINRaw = strings.Join(payload, "")

		cleaned := protocol.StripISOTPPCI(payload)
		vinTokens := subframeAfterMarker(cleaned)
		vin := strings.ToUpper(strings.TrimSpace(protocol.ExtractASCIIFromHexTokens(vinTokens)))
		if len(vin) >= 17 {
			vin = vin[:17]
		}
		if protocol.IsValidVIN(vin) {
			info.VIN = vin
			info.VINECU = ecu
		}
	}

	milOn, count, err := s.GetMILStatus()
	if err == nil {
		info.MILOn = milOn
		info.DTCCount = count
	}

	return info, nil
}

// subframeAfterMarker finds the "49 02 01" subframe marker in cleaned and
// returns whatever follows it; failing that it falls back to dropping the
// first 3 tokens (service id, pid, subframe count) outright.
func subframeAfterMarker(cleaned []string) []string {
	for i := 0; i+3 <= len(cleaned); i++ {
		if strings.EqualFold(cleaned[i], "49") && strings.EqualFold(cleaned[i+1], "02") && strings.EqualFold(cleaned[i+2], "01") {
			return cleaned[i+3:]
		}
	}
	if len(cleaned) > 3 {
		return cleaned[3:]
	}
	return nil
}

func headersLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
