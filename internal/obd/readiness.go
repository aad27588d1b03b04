package obd

// MonitorStatus is one readiness-monitor entry.
type MonitorStatus struct {
	Name      string
	Available bool
	Complete  bool
}

// StatusStr renders the monitor as a short human label.
func (m MonitorStatus) StatusStr() string {
	if !m.Available {
		return "not available"
	}
	if m.Complete {
		return "complete"
	}
	return "incomplete"
}

// monitorBit names a single continuous/non-continuous monitor bit.
type monitorBit struct {
	name          string
	supportByte   int // 0=A, 1=B, 2=C, 3=D (offsets into payload[2:6])
	supportBit    uint
	completeByte  int
	completeBit   uint
}

var continuousMonitors = []monitorBit{
	{"Misfire", 1, 0, 2, 0},
	{"Fuel System", 1, 1, 2, 1},
	{"Components", 1, 2, 2, 2},
}

var sparkMonitors = []monitorBit{
	{"Catalyst", 1, 4, 3, 0},
	{"Heated Catalyst", 1, 5, 3, 1},
	{"Evaporative System", 1, 6, 3, 2},
	{"Secondary Air System", 1, 7, 3, 3},
	{"A/C Refrigerant", 2, 3, 3, 4},
	{"Oxygen Sensor", 2, 4, 3, 5},
	{"Oxygen Sensor Heater", 2, 5, 3, 6},
	{"EGR System", 2, 6, 3, 7},
}

var dieselMonitors = []monitorBit{
	{"NMHC Catalyst", 2, 0, 3, 0},
	{"NOx/SCR Monitor", 2, 1, 3, 1},
	{"Boost Pressure", 2, 3, 3, 3},
	{"Exhaust Gas Sensor", 2, 5, 3, 5},
	{"PM Filter Monitoring", 2, 6, 3, 6},
	{"EGR/VVT System", 2, 7, 3, 7},
}

// ReadReadiness requests Mode 01 PID 01 and decodes the continuous/
// non-continuous I/M readiness monitor bitmap (spark-ignition vs
// compression-ignition table selected by bit B3). MIL status and DTC count
// are not returned here; GetMILStatus reads those.
func (s *Scanner) ReadReadiness() (map[string]MonitorStatus, error) {
	_, payload, found, err := s.queryPayload("0101", []string{"41", "01"})
	if err != nil {
		return nil, err
	}
	if !found || len(payload) < 6 {
		return nil, nil
	}

	bytes := make([]byte, 4)
	for i := 0; i < 4; i++ {
		b, err := hexByte(payload[2+i])
		if err != nil {
			return nil, nil
		}
		bytes[i] = b
	}

	isDiesel := bytes[1]&0x08 != 0

	result := make(map[string]MonitorStatus)
	for _, m := range continuousMonitors {
		result[m.name] = evalMonitor(bytes, m)
	}

	table := sparkMonitors
	if isDiesel {
		table = dieselMonitors
	}
	for _, m := range table {
		result[m.name] = evalMonitor(bytes, m)
	}
	return result, nil
}

func evalMonitor(bytes []byte, m monitorBit) MonitorStatus {
	support := bytes[m.supportByte]&(1<<m.supportBit) != 0
	incomplete := bytes[m.completeByte]&(1<<m.completeBit) != 0
	return MonitorStatus{
		Name:      m.name,
		Available: support,
		Complete:  support && !incomplete,
	}
}
