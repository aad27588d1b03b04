package protocol

import (
	"reflect"
	"testing"
)

func TestIsNoise(t *testing.T) {
	cases := map[string]bool{
		"SEARCHING...":      true,
		"BUS INIT: OK":      true,
		"NO DATA":           true,
		"OK":                true,
		"ELM327 v1.5":       true,
		"":                  true,
		"41 0C 1A F8":       false,
		"7E8 04 41 0C 1A F8": false,
	}
	for line, want := range cases {
		if got := IsNoise(line); got != want {
			t.Errorf("IsNoise(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestNormalizeTokens(t *testing.T) {
	got := NormalizeTokens("7e8 04 41 0c 1a f8")
	want := []string{"7E8", "04", "41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTokens = %v, want %v", got, want)
	}
}

func TestIsHexishTokens(t *testing.T) {
	if !IsHexishTokens([]string{"7E8", "04", "41"}) {
		t.Error("expected hexish tokens to pass")
	}
	if IsHexishTokens([]string{"SEARCHING"}) {
		t.Error("expected non-hex tokens to fail")
	}
	if IsHexishTokens(nil) {
		t.Error("expected empty tokens to fail")
	}
}

func TestExtractASCIIFromHexTokens(t *testing.T) {
	tokens := []string{"31", "48", "47", "43", "4D"}
	if got, want := ExtractASCIIFromHexTokens(tokens), "1HGCM"; got != want {
		t.Errorf("ExtractASCIIFromHexTokens = %q, want %q", got, want)
	}
}

func TestIsValidVIN(t *testing.T) {
	if !IsValidVIN("1hgcm82633a123456") {
		t.Error("expected lowercase 17-char VIN to validate")
	}
	if IsValidVIN("1HGCM82633A12345") {
		t.Error("expected 16-char VIN to fail")
	}
	if IsValidVIN("1HGCM82633AI23456") {
		t.Error("expected VIN containing I to fail")
	}
}

func TestPayloadFromTokensDropsHeaderAndLength(t *testing.T) {
	tokens := []string{"7E8", "04", "41", "0C", "1A", "F8"}
	got := PayloadFromTokens(tokens, true)
	want := []string{"41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PayloadFromTokens = %v, want %v", got, want)
	}
}

func TestPayloadFromTokensNoHeaders(t *testing.T) {
	tokens := []string{"04", "41", "0C", "1A", "F8"}
	got := PayloadFromTokens(tokens, false)
	want := []string{"41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PayloadFromTokens = %v, want %v", got, want)
	}
}

func TestPayloadFromTokensImplausibleLengthPassesThrough(t *testing.T) {
	tokens := []string{"7E8", "49", "02", "01"}
	got := PayloadFromTokens(tokens, true)
	want := []string{"49", "02", "01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PayloadFromTokens = %v, want %v", got, want)
	}
}

func TestGroupByECU(t *testing.T) {
	lines := []string{"SEARCHING...", "7E8 04 41 0C 1A F8", "7E9 04 41 0C 0A 00"}
	grouped := GroupByECU(lines, true)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 ECUs, got %d", len(grouped))
	}
	if len(grouped["7E8"]) != 1 || len(grouped["7E9"]) != 1 {
		t.Errorf("unexpected grouping: %v", grouped)
	}
}

func TestGroupByECUNoHeaders(t *testing.T) {
	lines := []string{"41 0C 1A F8"}
	grouped := GroupByECU(lines, false)
	if _, ok := grouped["NOHDR"]; !ok {
		t.Errorf("expected NOHDR bucket, got %v", grouped)
	}
}

func TestMergePayloads(t *testing.T) {
	grouped := map[string][][]string{
		"7E8": {{"7E8", "04", "41", "0C", "1A", "F8"}},
	}
	merged := MergePayloads(grouped, true)
	want := []string{"41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(merged["7E8"], want) {
		t.Errorf("MergePayloads = %v, want %v", merged["7E8"], want)
	}
}

func TestFindOBDResponsePayload(t *testing.T) {
	merged := map[string][]string{
		"7E8": {"41", "0C", "1A", "F8"},
		"7E9": {"7F", "01", "12"},
	}
	ecu, payload, found := FindOBDResponsePayload(merged, []string{"41", "0C"}, nil)
	if !found {
		t.Fatal("expected to find matching payload")
	}
	if ecu != "7E8" {
		t.Errorf("expected ecu 7E8, got %s", ecu)
	}
	want := []string{"41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("payload = %v, want %v", payload, want)
	}
}

func TestFindOBDResponsePayloadPrefersGivenECUs(t *testing.T) {
	merged := map[string][]string{
		"7E8": {"41", "0C", "00", "00"},
		"7E9": {"41", "0C", "1A", "F8"},
	}
	ecu, _, found := FindOBDResponsePayload(merged, []string{"41", "0C"}, []string{"7E9"})
	if !found || ecu != "7E9" {
		t.Fatalf("expected preferred ecu 7E9 to win, got %s found=%v", ecu, found)
	}
}

func TestFindOBDResponsePayloadNoMatch(t *testing.T) {
	merged := map[string][]string{"7E8": {"7F", "01", "12"}}
	_, _, found := FindOBDResponsePayload(merged, []string{"41", "0C"}, nil)
	if found {
		t.Error("expected no match")
	}
}

func TestStripISOTPPCISingleFrame(t *testing.T) {
	got := StripISOTPPCI([]string{"04", "41", "0C", "1A", "F8"})
	want := []string{"41", "0C", "1A", "F8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StripISOTPPCI = %v, want %v", got, want)
	}
}

func TestStripISOTPPCIFlowControl(t *testing.T) {
	got := StripISOTPPCI([]string{"30", "00", "00", "41", "0C"})
	want := []string{"41", "0C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StripISOTPPCI = %v, want %v", got, want)
	}
}
