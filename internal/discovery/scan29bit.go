package discovery

import (
	"strings"

	"github.com/anodyne74/obdcore/internal/elm"
)

const functionalRequestID29 = "18DB33F1"

// scan29Bit sends a single 29-bit functional-addressing probe
// (18DB33F1, tester address F1) and derives each responder's physical
// tx/rx pair from its 18DAF1xx-style reply header.
func scan29Bit(d *elm.Driver, opts Options) []*Module {
	merged := sendProbe(d, functionalRequestID29, "1003", opts.Timeout)
	if len(merged) == 0 {
		merged = sendProbe(d, functionalRequestID29, "3E00", opts.Timeout)
	}

	var modules []*Module
	for rxHeader, tokens := range merged {
		if len(tokens) == 0 {
			continue
		}
		if !matchResponse(tokens, 0x10) && !matchResponse(tokens, 0x3E) {
			continue
		}

		physTx, ok := physicalTxFromFunctionalRx(rxHeader)
		if !ok {
			continue
		}

		m := &Module{
			TxID:       physTx,
			RxID:       rxHeader,
			Addressing: "29bit",
			Responses:  []string{strings.Join(tokens, " ")},
			Confidence: 55,
		}
		if detectSecurity(tokens, 0x10) {
			m.RequiresSecurity = true
			m.Notes = append(m.Notes, "security access required for extended session")
		}
		modules = append(modules, m)
	}
	return modules
}

// physicalTxFromFunctionalRx derives the physical request header
// (18DA<module><F1>) from a functional-scan reply header of the form
// 18DAF1<module> (tester address F1 as the low byte of the rx id).
func physicalTxFromFunctionalRx(rxHeader string) (string, bool) {
	up := strings.ToUpper(rxHeader)
	if len(up) != 8 || !strings.HasPrefix(up, "18DAF1") {
		return "", false
	}
	moduleID := up[6:8]
	return "18DA" + moduleID + "F1", true
}
