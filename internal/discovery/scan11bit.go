package discovery

import (
	"strings"

	"github.com/anodyne74/obdcore/internal/elm"
)

// scan11Bit sweeps physically-addressed tx IDs across options.IDStart..IDEnd,
// probing each with a Diagnostic Session Control request and falling back to
// Tester Present, and returns one Module per distinct responding rx_id.
func scan11Bit(d *elm.Driver, opts Options) []*Module {
	byRx := make(map[string]*Module)
	var order []string

	for tx := opts.IDStart; tx <= opts.IDEnd; tx++ {
		txID := hexID(tx, 3)

		payload := probeSessionThenTesterPresent(d, txID, opts)
		if len(payload) == 0 {
			continue
		}

		for rxID, tokens := range payload {
			if len(tokens) == 0 {
				continue
			}
			if !matchResponse(tokens, 0x10) && !matchResponse(tokens, 0x3E) {
				continue
			}

			if m, ok := byRx[rxID]; ok {
				m.AltTxIDs = appendUnique(m.AltTxIDs, txID)
				m.Responses = append(m.Responses, strings.Join(tokens, " "))
				continue
			}

			m := &Module{
				TxID:       txID,
				RxID:       rxID,
				Addressing: "11bit",
				Responses:  []string{strings.Join(tokens, " ")},
				Confidence: 60,
			}
			if detectSecurity(tokens, 0x10) {
				m.RequiresSecurity = true
				m.Notes = append(m.Notes, "security access required for extended session")
			}
			byRx[rxID] = m
			order = append(order, rxID)
		}
	}

	modules := make([]*Module, 0, len(order))
	for _, rxID := range order {
		modules = append(modules, byRx[rxID])
	}
	return modules
}

// probeSessionThenTesterPresent tries "10 03" (extended diagnostic session)
// first, then "3E 00" (tester present) if the session request draws nothing.
func probeSessionThenTesterPresent(d *elm.Driver, txID string, opts Options) map[string][]string {
	merged := sendProbe(d, txID, "1003", opts.Timeout)
	if anyResponds(merged) {
		return merged
	}
	return sendProbe(d, txID, "3E00", opts.Timeout)
}

func anyResponds(merged map[string][]string) bool {
	for _, tokens := range merged {
		if len(tokens) > 0 {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
