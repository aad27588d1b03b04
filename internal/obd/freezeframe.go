package obd

import (
	"strings"

	"github.com/anodyne74/obdcore/internal/dtc"
)

// FreezeFramePIDs is the canonical set of Mode 02 PIDs read for frame 0.
var FreezeFramePIDs = []string{"04", "05", "06", "07", "0B", "0C", "0D", "0E", "0F", "11"}

// FreezeFrame bundles the frame-0 readings plus the DTC that triggered
// freeze-frame capture.
type FreezeFrame struct {
	TriggerDTC string
	Readings   map[string]*Reading
}

// ReadFreezeFrame requests frame 0 of FreezeFramePIDs plus the triggering
// DTC (Mode 02 PID 02).
func (s *Scanner) ReadFreezeFrame() (*FreezeFrame, error) {
	ff := &FreezeFrame{Readings: make(map[string]*Reading)}

	_, payload, found, err := s.queryPayload("0202", []string{"42", "02"})
	if err != nil {
		return nil, err
	}
	if found && len(payload) >= 4 {
		hex := strings.ToUpper(strings.Join(payload[2:], ""))
		if len(hex) >= 4 {
			if code, err := dtc.DecodeBytes(hex[:4]); err == nil {
				ff.TriggerDTC = code
			}
		}
	}

	for _, pid := range FreezeFramePIDs {
		reading, err := s.readFreezeFramePID(pid)
		if err != nil {
			continue
		}
		if reading != nil {
			ff.Readings[pid] = reading
		}
	}
	return ff, nil
}

func (s *Scanner) readFreezeFramePID(pid string) (*Reading, error) {
	info, ok := PIDs[pid]
	if !ok {
		return nil, nil
	}

	ecu, payload, found, err := s.queryPayload("02"+pid+"00", []string{"42", pid})
	if err != nil {
		return nil, err
	}
	if !found || len(payload) < 3 {
		return nil, nil
	}

	dataHex := strings.ToUpper(strings.Join(payload[2:], ""))
	value, decoded := DecodePIDResponse(pid, dataHex)
	if !decoded {
		return nil, nil
	}
	rounded := Round(value, 2)
	return &Reading{Name: info.Name, Unit: info.Unit, PID: pid, RawHex: dataHex, ECU: ecu, Value: &rounded}, nil
}
