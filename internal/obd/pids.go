// Package obd implements the OBD-II (SAE J1979) service: PID reads, DTC
// modes 03/07/0A, freeze frame, VIN, and readiness monitor decode, built
// on top of the ELM driver and the protocol/ISO-TP helpers.
package obd

// Shape enumerates the arithmetic forms a PID formula can take, so the
// descriptor table stays data instead of per-PID closures.
type Shape int

const (
	// ShapeA: value = A
	ShapeA Shape = iota
	// ShapeAMinusK: value = A - K
	ShapeAMinusK
	// ShapeAMinusKTimesS: value = (A - K) * S
	ShapeAMinusKTimesS
	// ShapeATimesSPlusK: value = A*S + K
	ShapeATimesSPlusK
	// ShapeAB256TimesSPlusK: value = (A*256 + B) * S + K
	ShapeAB256TimesSPlusK
	// ShapeAIgnoreBTimesS: 2-byte PID whose second byte is unused by the
	// formula (O2 sensor voltage PIDs only decode the first byte).
	ShapeAIgnoreBTimesS
)

// PID is an immutable Mode 01 parameter descriptor.
type PID struct {
	Code        string
	Name        string
	Unit        string
	Bytes       int
	Shape       Shape
	K           float64
	S           float64
	Min         float64
	Max         float64
	Description string
}

// eval applies the descriptor's formula shape to the raw byte(s).
func (p PID) eval(a, b int) float64 {
	af, bf := float64(a), float64(b)
	switch p.Shape {
	case ShapeA:
		return af
	case ShapeAMinusK:
		return af - p.K
	case ShapeAMinusKTimesS:
		return (af - p.K) * p.S
	case ShapeATimesSPlusK:
		return af*p.S + p.K
	case ShapeAB256TimesSPlusK:
		return (af*256+bf)*p.S + p.K
	case ShapeAIgnoreBTimesS:
		return af * p.S
	default:
		return af
	}
}

// PIDs is the standard Mode 01 live-data table (SAE J1979).
var PIDs = map[string]PID{
	"04": {Code: "04", Name: "Calculated Engine Load", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Indicates percentage of peak available torque"},
	"05": {Code: "05", Name: "Engine Coolant Temperature", Unit: "°C", Bytes: 1, Shape: ShapeAMinusK, K: 40, Min: -40, Max: 215, Description: "Coolant temperature from ECT sensor"},
	"0F": {Code: "0F", Name: "Intake Air Temperature", Unit: "°C", Bytes: 1, Shape: ShapeAMinusK, K: 40, Min: -40, Max: 215, Description: "Air temperature entering the engine"},
	"5C": {Code: "5C", Name: "Engine Oil Temperature", Unit: "°C", Bytes: 1, Shape: ShapeAMinusK, K: 40, Min: -40, Max: 215, Description: "Oil temperature (if supported)"},
	"06": {Code: "06", Name: "Short Term Fuel Trim - Bank 1", Unit: "%", Bytes: 1, Shape: ShapeAMinusKTimesS, K: 128, S: 100.0 / 128, Min: -100, Max: 99.2, Description: "Immediate fuel adjustment (+ = adding fuel)"},
	"07": {Code: "07", Name: "Long Term Fuel Trim - Bank 1", Unit: "%", Bytes: 1, Shape: ShapeAMinusKTimesS, K: 128, S: 100.0 / 128, Min: -100, Max: 99.2, Description: "Learned fuel adjustment (+ = adding fuel)"},
	"08": {Code: "08", Name: "Short Term Fuel Trim - Bank 2", Unit: "%", Bytes: 1, Shape: ShapeAMinusKTimesS, K: 128, S: 100.0 / 128, Min: -100, Max: 99.2, Description: "Immediate fuel adjustment bank 2"},
	"09": {Code: "09", Name: "Long Term Fuel Trim - Bank 2", Unit: "%", Bytes: 1, Shape: ShapeAMinusKTimesS, K: 128, S: 100.0 / 128, Min: -100, Max: 99.2, Description: "Learned fuel adjustment bank 2"},
	"0A": {Code: "0A", Name: "Fuel Pressure", Unit: "kPa", Bytes: 1, Shape: ShapeATimesSPlusK, S: 3, Min: 0, Max: 765, Description: "Fuel rail pressure (gauge)"},
	"0B": {Code: "0B", Name: "Intake Manifold Pressure", Unit: "kPa", Bytes: 1, Shape: ShapeA, Min: 0, Max: 255, Description: "MAP sensor reading"},
	"0C": {Code: "0C", Name: "Engine RPM", Unit: "rpm", Bytes: 2, Shape: ShapeAB256TimesSPlusK, S: 0.25, Min: 0, Max: 16383.75, Description: "Current engine speed"},
	"0D": {Code: "0D", Name: "Vehicle Speed", Unit: "km/h", Bytes: 1, Shape: ShapeA, Min: 0, Max: 255, Description: "Current vehicle speed"},
	"0E": {Code: "0E", Name: "Timing Advance", Unit: "°", Bytes: 1, Shape: ShapeATimesSPlusK, S: 0.5, K: -64, Min: -64, Max: 63.5, Description: "Ignition timing advance for #1 cylinder"},
	"10": {Code: "10", Name: "MAF Air Flow Rate", Unit: "g/s", Bytes: 2, Shape: ShapeAB256TimesSPlusK, S: 0.01, Min: 0, Max: 655.35, Description: "Mass air flow sensor reading"},
	"11": {Code: "11", Name: "Throttle Position", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Absolute throttle position"},
	"45": {Code: "45", Name: "Relative Throttle Position", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Relative throttle position"},
	"47": {Code: "47", Name: "Absolute Throttle Position B", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Throttle position sensor B"},
	"4C": {Code: "4C", Name: "Commanded Throttle Actuator", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Commanded throttle actuator position"},
	"49": {Code: "49", Name: "Accelerator Pedal Position D", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Accelerator pedal position sensor D"},
	"4A": {Code: "4A", Name: "Accelerator Pedal Position E", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Accelerator pedal position sensor E"},
	"1F": {Code: "1F", Name: "Run Time Since Engine Start", Unit: "sec", Bytes: 2, Shape: ShapeAB256TimesSPlusK, S: 1, Min: 0, Max: 65535, Description: "Time since engine start"},
	"2F": {Code: "2F", Name: "Fuel Tank Level", Unit: "%", Bytes: 1, Shape: ShapeATimesSPlusK, S: 100.0 / 255, Min: 0, Max: 100, Description: "Fuel tank level input"},
	"42": {Code: "42", Name: "Control Module Voltage", Unit: "V", Bytes: 2, Shape: ShapeAB256TimesSPlusK, S: 0.001, Min: 0, Max: 65.535, Description: "ECU supply voltage"},
	"14": {Code: "14", Name: "O2 Sensor 1 Voltage", Unit: "V", Bytes: 2, Shape: ShapeAIgnoreBTimesS, S: 1.0 / 200, Min: 0, Max: 1.275, Description: "Bank 1 Sensor 1 O2 voltage"},
	"15": {Code: "15", Name: "O2 Sensor 2 Voltage", Unit: "V", Bytes: 2, Shape: ShapeAIgnoreBTimesS, S: 1.0 / 200, Min: 0, Max: 1.275, Description: "Bank 1 Sensor 2 O2 voltage"},
}

// DiagnosticPIDs is a practical small set useful for general troubleshooting.
var DiagnosticPIDs = []string{"05", "0C", "0D", "11", "45", "49", "4A", "4C", "42", "0B", "06", "07"}

// TemperaturePIDs lists every temperature-sensor PID.
var TemperaturePIDs = []string{"05", "0F", "5C"}

// ThrottlePIDs lists every throttle/pedal-position PID, useful for ETC issues.
var ThrottlePIDs = []string{"11", "45", "47", "4C", "49", "4A"}
