package kline

import "testing"

func TestClassifyResponse(t *testing.T) {
	cases := []struct {
		lines []string
		want  ResponseKind
	}{
		{nil, ResponseEmpty},
		{[]string{"NO DATA"}, ResponseNoData},
		{[]string{"UNABLE TO CONNECT"}, ResponseUnableToConnect},
		{[]string{"41 00 BE 3E B8 11"}, ResponseOK},
		{[]string{"BUS INIT: ERROR"}, ResponseError},
	}
	for _, c := range cases {
		if got := ClassifyResponse(c.lines); got != c.want {
			t.Errorf("ClassifyResponse(%v) = %v, want %v", c.lines, got, c.want)
		}
	}
}

func TestResponseIsHardFail(t *testing.T) {
	if !ResponseIsHardFail([]string{"BUS INIT: ERROR"}) {
		t.Errorf("expected BUS INIT error to be a hard fail")
	}
	if ResponseIsHardFail([]string{"NO DATA"}) {
		t.Errorf("NO DATA should not be a hard fail")
	}
}

func TestIsRetryableResponse(t *testing.T) {
	if !IsRetryableResponse([]string{"NO DATA"}, true, false) {
		t.Errorf("NO DATA should retry when quirk enabled")
	}
	if IsRetryableResponse([]string{"NO DATA"}, false, false) {
		t.Errorf("NO DATA should not retry when quirk disabled")
	}
	if !IsRetryableResponse([]string{"UNABLE TO CONNECT"}, false, true) {
		t.Errorf("UNABLE TO CONNECT should retry when ignore quirk enabled")
	}
}

func TestProfileValidate(t *testing.T) {
	if err := ISO9141_2.Validate(); err != nil {
		t.Fatalf("builtin profile should validate: %v", err)
	}

	bad := Profile{Name: "", Family: FamilyISO9141_2}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}

	bad = Profile{Name: "x", Family: "bogus"}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unsupported family to be rejected")
	}
}

func TestPolicyForProfile(t *testing.T) {
	p := PolicyForProfile(KWP2000_5Baud, DefaultPolicy())
	if !p.WarmupEnabled {
		t.Errorf("KWP2000_5Baud requires a warmup probe")
	}
	if p.Timeout != KWP2000_5Baud.RequestTimeout {
		t.Errorf("policy timeout should come from the profile")
	}
}

func TestTD5Candidates(t *testing.T) {
	candidates := TD5Candidates()
	if len(candidates) != 3 {
		t.Fatalf("expected 3 TD5 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			t.Errorf("TD5 candidate %q should validate: %v", c.Name, err)
		}
	}
}

func TestProbeOK(t *testing.T) {
	if !ProbeOK("0100", []string{"41 00 BE 3E B8 11"}) {
		t.Errorf("expected 0100 probe to match its 41 response")
	}
	if ProbeOK("0100", []string{"NO DATA"}) {
		t.Errorf("NO DATA should not count as a match")
	}
}

func TestExtractHexBlob(t *testing.T) {
	got := ExtractHexBlob([]string{"41 00 BE", "3E B8 11"})
	want := "4100BE3EB811"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
