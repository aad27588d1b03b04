package uds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/protocol"
	"github.com/anodyne74/obdcore/internal/transport"
)

// Transport is the minimal ELM/ISO-TP bridge UDS requests ride over: a
// fixed tx/rx ECU pair, a locked protocol code, and a headers mode.
//
// State: tx-id, rx-id, protocol code, headers_on. Configure issues
// ATSP{protocol}, ATE0, ATL0, ATS0, ATH1/ATH0, ATSH{tx-id}.
type Transport struct {
	Driver    *elm.Driver
	TxID      string
	RxID      string
	Protocol  string
	HeadersOn bool

	configured bool
}

// NewTransport builds a Transport defaulting to 11-bit CAN at 500k
// (protocol "6") addressing the engine ECU pair (7E0/7E8).
func NewTransport(d *elm.Driver, txID, rxID, protocol string) *Transport {
	if txID == "" {
		txID = "7E0"
	}
	if rxID == "" {
		rxID = "7E8"
	}
	if protocol == "" {
		protocol = "6"
	}
	return &Transport{Driver: d, TxID: strings.ToUpper(txID), RxID: strings.ToUpper(rxID), Protocol: protocol, HeadersOn: true}
}

// Configure issues the AT sequence that locks the adapter into this
// transport's protocol and addressing.
func (t *Transport) Configure() error {
	cmds := []string{"ATSP" + t.Protocol, "ATE0", "ATL0", "ATS0"}
	if t.HeadersOn {
		cmds = append(cmds, "ATH1")
	} else {
		cmds = append(cmds, "ATH0")
	}
	cmds = append(cmds, "ATSH"+t.TxID)

	for _, cmd := range cmds {
		if _, err := t.Driver.SendRawLines(cmd, 0); err != nil {
			return NewTransportError(fmt.Errorf("configuring %q: %w", cmd, err))
		}
	}
	t.configured = true
	return nil
}

// Send writes payload as space-separated hex and returns the byte payload
// from the configured rx-id (or the headers-off sentinel group).
func (t *Transport) Send(payload []byte) ([]byte, error) {
	if !t.configured {
		if err := t.Configure(); err != nil {
			return nil, err
		}
	}

	lines, err := t.Driver.SendRawLines(hexBytes(payload), 0)
	if err != nil {
		if _, ok := err.(*transport.DeviceDisconnected); ok {
			return nil, NewTransportError(err)
		}
		return nil, NewTransportError(err)
	}

	grouped := protocol.GroupByECU(lines, t.HeadersOn)
	merged := protocol.MergePayloads(grouped, t.HeadersOn)

	var tokens []string
	if t.HeadersOn {
		tokens = firstNonEmpty(merged, t.RxID)
	} else {
		tokens = firstNonEmpty(merged, "NOHDR")
	}

	return tokensToBytes(tokens), nil
}

func firstNonEmpty(merged map[string][]string, key string) []string {
	if v, ok := merged[key]; ok {
		return v
	}
	for _, v := range merged {
		return v
	}
	return nil
}

func hexBytes(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

func tokensToBytes(tokens []string) []byte {
	out := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}
