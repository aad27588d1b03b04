package discovery

import "testing"

func TestMatchResponsePositive(t *testing.T) {
	payload := []string{"50", "03"}
	if !matchResponse(payload, 0x10) {
		t.Fatalf("expected positive response for SID 0x10 to match")
	}
}

func TestMatchResponseNegative(t *testing.T) {
	payload := []string{"7F", "10", "11"}
	if !matchResponse(payload, 0x10) {
		t.Fatalf("expected negative response 7F 10 11 to match request SID 0x10")
	}
}

func TestMatchResponseNoMatch(t *testing.T) {
	payload := []string{"41", "00", "BE"}
	if matchResponse(payload, 0x10) {
		t.Fatalf("did not expect unrelated payload to match")
	}
}

func TestDetectSecurity(t *testing.T) {
	payload := []string{"7F", "10", "33"}
	if !detectSecurity(payload, 0x10) {
		t.Fatalf("expected NRC 0x33 to be detected as security access required")
	}
	payload = []string{"7F", "10", "11"}
	if detectSecurity(payload, 0x10) {
		t.Fatalf("NRC 0x11 should not be classified as security related")
	}
}

func TestExtractVIN(t *testing.T) {
	// "62 F1 90" + ASCII "1C4RJFAG5FC..." padded to 17 chars.
	payload := []string{
		"62", "F1", "90",
		"31", "43", "34", "52", "4A", "46", "41", "47", "35", "46",
		"43", "31", "32", "33", "34", "35", "36",
	}
	vin, ok := extractVIN(payload)
	if !ok {
		t.Fatalf("expected VIN to be extracted")
	}
	if len(vin) != 17 {
		t.Fatalf("expected 17 char VIN, got %q (%d)", vin, len(vin))
	}
}

func TestClassifyFromDTCs(t *testing.T) {
	cases := []struct {
		counts map[string]int
		want   string
	}{
		{map[string]int{"P": 3, "C": 0, "B": 0, "U": 0}, "Powertrain / Engine"},
		{map[string]int{"P": 0, "C": 2, "B": 0, "U": 0}, "ABS/ESC (chassis)"},
		{map[string]int{"P": 0, "C": 0, "B": 0, "U": 0}, ""},
	}
	for _, c := range cases {
		got := classifyFromDTCs(c.counts)
		if got != c.want {
			t.Errorf("classifyFromDTCs(%v) = %q, want %q", c.counts, got, c.want)
		}
	}
}

func TestBrandHintFromVIN(t *testing.T) {
	if got := brandHintFromVIN("1C4RJFAG5FC123456"); got != "jeep" {
		t.Errorf("expected jeep hint, got %q", got)
	}
	if got := brandHintFromVIN("SALGA2EF8HA123456"); got != "land_rover" {
		t.Errorf("expected land_rover hint, got %q", got)
	}
	if got := brandHintFromVIN("1HGCM82633A123456"); got != "" {
		t.Errorf("expected no hint for unknown WMI, got %q", got)
	}
}

func TestPhysicalTxFromFunctionalRx(t *testing.T) {
	tx, ok := physicalTxFromFunctionalRx("18DAF110")
	if !ok {
		t.Fatalf("expected functional rx header to resolve to a physical tx id")
	}
	if tx != "18DA10F1" {
		t.Errorf("got tx id %q, want 18DA10F1", tx)
	}

	if _, ok := physicalTxFromFunctionalRx("7E8"); ok {
		t.Errorf("expected non-29bit header to be rejected")
	}
}

func TestProtocolCandidates(t *testing.T) {
	opts := Options{Try250k: true, Include29Bit: true}
	got := protocolCandidates(opts)
	want := []string{"6", "7", "8", "9"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
