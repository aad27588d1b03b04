package discovery

import (
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/uds/catalog"
)

// fingerprintModules enriches each module with a VIN read (0x22 F190, when
// opts.ConfirmVIN) and a DTC summary (0x19 02 FF, when opts.ConfirmDTCs),
// then classifies its module type from whichever evidence is available.
func fingerprintModules(d *elm.Driver, modules []*Module, opts Options) (vin string) {
	for _, m := range modules {
		if opts.ConfirmVIN {
			merged := sendProbe(d, m.TxID, "22F190", maxDur(opts.Timeout, 200*time.Millisecond))
			if tokens, ok := merged[m.RxID]; ok {
				if v, found := extractVIN(tokens); found {
					m.Fingerprint = ensureFingerprint(m.Fingerprint)
					m.Fingerprint["vin"] = v
					m.Confidence += 15
					if vin == "" {
						vin = v
					}
				}
			}
		}

		if opts.ConfirmDTCs {
			merged := sendProbe(d, m.TxID, "1902FF", maxDur(opts.Timeout, 200*time.Millisecond))
			if tokens, ok := merged[m.RxID]; ok {
				if counts := parseDTCSummary(tokens); counts != nil {
					m.Fingerprint = ensureFingerprint(m.Fingerprint)
					m.Fingerprint["dtc_counts"] = counts
					m.Confidence += 10
					if category := classifyFromDTCs(counts); category != "" && m.ModuleType == "" {
						m.ModuleType = category
					}
				}
			}
		}

		applySignatureMatch(m, opts.BrandHint)
	}
	return vin
}

func ensureFingerprint(fp map[string]any) map[string]any {
	if fp == nil {
		return make(map[string]any)
	}
	return fp
}

// applySignatureMatch names m.ModuleType from the brand catalog when its
// tx/rx pair matches a known module entry (standard or brand-specific).
func applySignatureMatch(m *Module, brandHint string) {
	candidates := append([]catalog.Module{}, catalog.StandardModules...)
	candidates = append(candidates, catalog.LoadBrandModules(brandHint)...)

	for _, c := range candidates {
		if strings.EqualFold(c.TxID, m.TxID) && strings.EqualFold(c.RxID, m.RxID) {
			m.ModuleType = c.Name
			m.Confidence += 20
			m.Notes = append(m.Notes, "matched catalog entry: "+c.Name)
			return
		}
	}

	if m.ModuleType == "" {
		m.ModuleType = moduleTypeFromAddress(m.TxID)
	}
}

// moduleTypeFromAddress makes a best-effort guess from well-known SAE
// physical addressing conventions when no catalog entry matches.
func moduleTypeFromAddress(txID string) string {
	switch strings.ToUpper(txID) {
	case "7E0":
		return "engine (PCM)"
	case "7E1":
		return "transmission (TCM)"
	case "760":
		return "steering"
	case "7B0", "7B1":
		return "abs/esc"
	case "7A0":
		return "airbag (SRS)"
	default:
		return "unknown"
	}
}
