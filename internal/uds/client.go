package uds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anodyne74/obdcore/internal/uds/catalog"
)

// Client issues UDS requests over a configured Transport, decoding
// responses with the brand's DID/routine catalog.
type Client struct {
	Transport *Transport
	Brand     string
}

// NewClient builds a Client for brand (used only to resolve DID/routine
// names through internal/uds/catalog; an empty brand still supports raw
// numeric DID/SID access).
func NewClient(t *Transport, brand string) *Client {
	return &Client{Transport: t, Brand: brand}
}

func (c *Client) sendAndExpect(sid byte, data []byte) ([]byte, error) {
	request := BuildRequest(sid, data)
	response, err := c.Transport.Send(request)
	if err != nil {
		return nil, err
	}

	if len(response) == 0 {
		return nil, NewResponseError("empty UDS response")
	}
	if IsNegativeResponse(response) {
		svc, nrc := ParseNegative(response)
		return nil, NewNegativeResponse(svc, nrc)
	}

	expected := PositiveResponseSID(sid)
	if response[0] != expected {
		return nil, NewResponseError(fmt.Sprintf("unexpected response SID 0x%02X (expected 0x%02X)", response[0], expected))
	}
	return response, nil
}

// DIDResult is a decoded Read Data By Identifier response.
type DIDResult struct {
	DID   string
	Name  string
	Value any
	Raw   string
}

// ReadDID issues 0x22 for did (a 4 hex-digit string, e.g. "F190") and
// decodes the result per the brand catalog entry, if one matches.
func (c *Client) ReadDID(did string) (*DIDResult, error) {
	didBytes, err := didToBytes(did)
	if err != nil {
		return nil, NewResponseError(err.Error())
	}

	response, err := c.sendAndExpect(0x22, didBytes)
	if err != nil {
		return nil, err
	}
	if len(response) < 3 {
		return nil, NewResponseError("response too short for DID read")
	}

	respDID := strings.ToUpper(fmt.Sprintf("%02X%02X", response[1], response[2]))
	data := response[3:]

	result := &DIDResult{DID: respDID, Raw: strings.ToUpper(fmt.Sprintf("%X", data))}
	if entry, ok := catalog.FindDID(c.Brand, respDID); ok {
		result.Name = entry.Name
		result.Value = DecodeDIDValue(entry.Decoder, data)
	}
	return result, nil
}

// ReadDIDNamed resolves name to a DID through the brand catalog and reads it.
func (c *Client) ReadDIDNamed(name string) (*DIDResult, error) {
	entry, ok := catalog.FindDIDByName(c.Brand, name)
	if !ok {
		return nil, NewResponseError("unknown DID name: " + name)
	}
	return c.ReadDID(entry.DID)
}

// RoutineResult is the response to a Routine Control request.
type RoutineResult struct {
	Routine   string
	RoutineID string
	Status    string
}

// RoutineControl issues 0x31 for routineName, resolved through the brand
// catalog, with subfunction (default 0x01 "start") and optional payload hex.
func (c *Client) RoutineControl(routineName string, subfunction byte, payloadHex string) (*RoutineResult, error) {
	routine, ok := catalog.FindRoutine(c.Brand, routineName)
	if !ok {
		return nil, NewResponseError("unknown routine: " + routineName)
	}
	if subfunction == 0 {
		subfunction = 0x01
	}

	routineID, err := strconv.ParseUint(routine.RoutineID, 16, 16)
	if err != nil {
		return nil, NewResponseError("invalid routine id in catalog: " + routine.RoutineID)
	}
	payload, err := hexStringToBytes(payloadHex)
	if err != nil {
		return nil, NewResponseError(err.Error())
	}

	data := append([]byte{subfunction, byte(routineID >> 8), byte(routineID)}, payload...)
	response, err := c.sendAndExpect(0x31, data)
	if err != nil {
		return nil, err
	}

	status := ""
	if len(response) > 3 {
		status = strings.ToUpper(fmt.Sprintf("%X", response[3:]))
	}
	return &RoutineResult{Routine: routineName, RoutineID: routine.RoutineID, Status: status}, nil
}

// DTCGroup is one 4-byte group from a Read DTC Information response.
type DTCGroup struct {
	DTCHigh, DTCMid, DTCLow, Status byte
}

// ReadDTCInfo issues 0x19 02 FF (report DTCs by status mask, all masks) and
// returns the status mask plus each 4-byte DTC group.
func (c *Client) ReadDTCInfo() (byte, []DTCGroup, error) {
	response, err := c.sendAndExpect(0x19, []byte{0x02, 0xFF})
	if err != nil {
		return 0, nil, err
	}
	if len(response) < 3 {
		return 0, nil, NewResponseError("response too short for read DTC information")
	}

	statusMask := response[2]
	rest := response[3:]

	var groups []DTCGroup
	for i := 0; i+4 <= len(rest); i += 4 {
		groups = append(groups, DTCGroup{DTCHigh: rest[i], DTCMid: rest[i+1], DTCLow: rest[i+2], Status: rest[i+3]})
	}
	return statusMask, groups, nil
}

// FingerprintSummary counts groups by their top-nibble DTC letter
// (P/C/B/U), matching the decode rule in internal/dtc.
func FingerprintSummary(groups []DTCGroup) map[string]int {
	summary := make(map[string]int)
	for _, g := range groups {
		typeBits := (g.DTCHigh >> 6) & 0x03
		letter := [4]string{"P", "C", "B", "U"}[typeBits]
		summary[letter]++
	}
	return summary
}

// TesterPresent issues 0x3E 0x00, used as a liveness probe by discovery.
func (c *Client) TesterPresent() error {
	_, err := c.sendAndExpect(0x3E, []byte{0x00})
	return err
}

// DiagnosticSessionControl issues 0x10 with the given session type (e.g.
// 0x01 default, 0x03 extended), used as a liveness/capability probe.
func (c *Client) DiagnosticSessionControl(sessionType byte) error {
	_, err := c.sendAndExpect(0x10, []byte{sessionType})
	return err
}

// RawSend issues sid with data and returns the positive response bytes
// (SID stripped), raising on a negative or malformed response.
func (c *Client) RawSend(sid byte, data []byte) ([]byte, error) {
	response, err := c.sendAndExpect(sid, data)
	if err != nil {
		return nil, err
	}
	return response[1:], nil
}

func didToBytes(did string) ([]byte, error) {
	cleaned := strings.NewReplacer("0x", "", " ", "").Replace(strings.TrimSpace(did))
	v, err := strconv.ParseUint(cleaned, 16, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid DID %q: %w", did, err)
	}
	return []byte{byte(v >> 8), byte(v)}, nil
}

func hexStringToBytes(s string) ([]byte, error) {
	cleaned := strings.NewReplacer("0x", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil, nil
	}
	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("invalid hex payload %q: odd length", s)
	}
	out := make([]byte, len(cleaned)/2)
	for i := 0; i < len(out); i++ {
		v, err := strconv.ParseUint(cleaned[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload %q: %w", s, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
