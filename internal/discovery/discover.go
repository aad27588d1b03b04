package discovery

import (
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/rs/xid"
)

// protocolCandidates orders the ATSP codes to try for a given addressing
// preference: 11-bit 500k first, then 29-bit 500k, then (if opts.Try250k)
// the 250k variants of both.
func protocolCandidates(opts Options) []string {
	candidates := []string{"6"}
	if opts.Include29Bit {
		candidates = append(candidates, "7")
	}
	if opts.Try250k {
		candidates = append(candidates, "8")
		if opts.Include29Bit {
			candidates = append(candidates, "9")
		}
	}
	return candidates
}

// Discover runs a full module discovery pass over d: for each candidate
// protocol it sweeps the 11-bit tx range, optionally probes 29-bit
// functional addressing, and stops at the first protocol that yields any
// module (unless opts.StopOnFirst is false, in which case every candidate
// protocol is tried and results are merged).
func Discover(d *elm.Driver, opts Options) *Result {
	start := time.Now()
	result := &Result{CorrelationID: xid.New().String()}

	savedHeaders := d.HeadersOn
	savedProtocol := d.GetProtocol()
	defer func() {
		d.HeadersOn = savedHeaders
		_, _ = d.SendRawLines("ATSH", time.Second)
		restoreProtocol(d, savedProtocol)
	}()

	d.HeadersOn = true
	_, _ = d.SendRawLines("ATH1", time.Second)

	var modules []*Module
	var usedProtocol, usedAddressing string

	for _, code := range protocolCandidates(opts) {
		if _, err := d.SendRawLines("ATSP"+code, time.Second); err != nil {
			continue
		}
		time.Sleep(30 * time.Millisecond)

		found := scan11Bit(d, opts)
		addressing := "11bit"

		if len(found) == 0 && opts.Include29Bit {
			found = scan29Bit(d, opts)
			addressing = "29bit"
		}

		if len(found) > 0 {
			for _, m := range found {
				m.Protocol = code
			}
			modules = append(modules, found...)
			usedProtocol = code
			usedAddressing = addressing
			if opts.StopOnFirst {
				break
			}
		}
	}

	if len(modules) == 0 {
		result.Err = errNoModulesFound
		result.Elapsed = time.Since(start)
		return result
	}

	vin := fingerprintModules(d, modules, opts)
	if vin != "" && opts.BrandHint == "" {
		opts.BrandHint = brandHintFromVIN(vin)
		for _, m := range modules {
			applySignatureMatch(m, opts.BrandHint)
		}
	}

	result.Modules = modules
	result.Protocol = usedProtocol
	result.Addressing = usedAddressing
	result.VIN = vin
	result.Elapsed = time.Since(start)
	return result
}

func restoreProtocol(d *elm.Driver, name string) {
	for code, n := range protocolNameLookup() {
		if n == name {
			_, _ = d.SendRawLines("ATSP"+code, time.Second)
			return
		}
	}
	_, _ = d.SendRawLines("ATSP0", time.Second)
}

// protocolNameLookup mirrors elm.Driver's internal protocol name table so
// discovery can map a GetProtocol() string back to its ATSP code without
// exporting that table from package elm.
func protocolNameLookup() map[string]string {
	return map[string]string{
		"1": "SAE J1850 PWM",
		"2": "SAE J1850 VPW",
		"3": "ISO 9141-2",
		"4": "ISO 14230-4 KWP (5 baud init)",
		"5": "ISO 14230-4 KWP (fast init)",
		"6": "ISO 15765-4 CAN (11 bit, 500 kbaud)",
		"7": "ISO 15765-4 CAN (29 bit, 500 kbaud)",
		"8": "ISO 15765-4 CAN (11 bit, 250 kbaud)",
		"9": "ISO 15765-4 CAN (29 bit, 250 kbaud)",
		"A": "SAE J1939 CAN",
	}
}
