package kline

import (
	"strings"
	"time"
)

// Family names a K-Line protocol family a Profile targets.
type Family string

const (
	FamilyISO9141_2    Family = "iso9141_2"
	FamilyKWP2000_5Baud Family = "kwp2000_5baud"
	FamilyKWP2000_Fast  Family = "kwp2000_fast"
)

// Profile describes how to configure an ELM327-compatible adapter to talk
// to a legacy (K-Line) vehicle. Deliberately conservative: only AT commands
// broadly supported across ELM clones, no experimental knobs until a
// specific adapter/vehicle combination is proven to need them.
type Profile struct {
	Name   string
	Family Family

	// InitAT is the base sequence to select protocol, headers, etc.
	InitAT []string
	// OptionsAT holds additional, still-conservative AT commands.
	OptionsAT []string
	// VerifyOBD are OBD probes used to confirm real communication.
	VerifyOBD []string

	RequestTimeout      time.Duration
	InterCommandDelay   time.Duration

	Quirks QuirkSet
	Notes  string
}

// Validate checks a profile is well formed before it's applied.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewProfileError("profile name is empty", Context{})
	}
	switch p.Family {
	case FamilyISO9141_2, FamilyKWP2000_5Baud, FamilyKWP2000_Fast:
	default:
		return NewProfileError("unsupported K-Line family: "+string(p.Family), Context{ProfileName: p.Name})
	}
	for _, cmd := range append(append([]string{}, p.InitAT...), p.OptionsAT...) {
		if strings.TrimSpace(cmd) == "" {
			return NewProfileError("invalid empty AT command", Context{ProfileName: p.Name})
		}
	}
	for _, probe := range p.VerifyOBD {
		if strings.TrimSpace(probe) == "" {
			return NewProfileError("invalid empty verify probe", Context{ProfileName: p.Name})
		}
	}
	return nil
}

func defaultVerifyProbes() []string {
	return []string{"0100", "0902"}
}

// ISO9141_2 selects ISO 9141-2 (ATSP3): conservative, stable, slow.
var ISO9141_2 = Profile{
	Name:              "ISO9141-2 (ATSP3)",
	Family:            FamilyISO9141_2,
	InitAT:            []string{"ATSP3", "ATE0", "ATL0", "ATS0", "ATH1"},
	VerifyOBD:         []string{"0100", "010C", "0105", "0902"},
	RequestTimeout:    4 * time.Second,
	InterCommandDelay: 70 * time.Millisecond,
	Quirks: QuirkSet{
		QuirkRetryOnNoData:          true,
		QuirkExtraInterCommandDelay: true,
	},
	Notes: "usually stable but slow; 010C/0105 confirm real aliveness better than 0100 alone",
}

// KWP2000_5Baud selects ISO 14230-4 KWP with 5-baud init (ATSP4).
var KWP2000_5Baud = Profile{
	Name:              "KWP2000 5-baud init (ATSP4)",
	Family:            FamilyKWP2000_5Baud,
	InitAT:            []string{"ATSP4", "ATE0", "ATL0", "ATS0", "ATH1"},
	VerifyOBD:         []string{"0100", "010C", "0105", "0902"},
	RequestTimeout:    4500 * time.Millisecond,
	InterCommandDelay: 90 * time.Millisecond,
	Quirks: QuirkSet{
		QuirkRetryOnNoData:          true,
		QuirkExtraInterCommandDelay: true,
		QuirkRequireWarmupProbe:     true,
	},
	Notes: "5-baud init is slow to establish; a warmup probe reduces first-query NO DATA",
}

// KWP2000_Fast selects ISO 14230-4 KWP with fast init (ATSP5).
var KWP2000_Fast = Profile{
	Name:              "KWP2000 fast init (ATSP5)",
	Family:            FamilyKWP2000_Fast,
	InitAT:            []string{"ATSP5", "ATE0", "ATL0", "ATS0", "ATH1"},
	VerifyOBD:         []string{"0100", "010C", "0105", "0902"},
	RequestTimeout:    4500 * time.Millisecond,
	InterCommandDelay: 90 * time.Millisecond,
	Quirks: QuirkSet{
		QuirkRetryOnNoData:          true,
		QuirkExtraInterCommandDelay: true,
	},
	Notes: "faster to establish than 5-baud init, still needs inter-request delay to avoid flooding the ECU",
}

func cloneWith(p Profile, nameSuffix string, verifyOBD []string, extraQuirks QuirkSet) Profile {
	quirks := make(QuirkSet, len(p.Quirks)+len(extraQuirks))
	for k, v := range p.Quirks {
		quirks[k] = v
	}
	for k, v := range extraQuirks {
		quirks[k] = v
	}
	return Profile{
		Name:              p.Name + " " + nameSuffix,
		Family:            p.Family,
		InitAT:            append([]string{}, p.InitAT...),
		OptionsAT:         append([]string{}, p.OptionsAT...),
		VerifyOBD:         verifyOBD,
		RequestTimeout:    p.RequestTimeout,
		InterCommandDelay: p.InterCommandDelay,
		Quirks:            quirks,
		Notes:             p.Notes,
	}
}

// TD5Candidates returns the Land Rover TD5 detection order: many TD5-era
// ECUs end up on KWP, but the order doesn't assume that blindly.
func TD5Candidates() []Profile {
	probes := []string{"0100", "010C", "0105", "0902"}
	quirks := QuirkSet{
		QuirkRetryOnNoData:          true,
		QuirkExtraInterCommandDelay: true,
	}
	return []Profile{
		cloneWith(KWP2000_5Baud, "[TD5]", probes, quirks),
		cloneWith(KWP2000_Fast, "[TD5]", probes, quirks),
		cloneWith(ISO9141_2, "[TD5]", probes, quirks),
	}
}

// BuiltinProfiles lists every profile this package ships.
func BuiltinProfiles() []Profile {
	return []Profile{ISO9141_2, KWP2000_5Baud, KWP2000_Fast}
}
