package discovery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/protocol"
)

func hexID(value int, width int) string {
	return strings.ToUpper(fmt.Sprintf("%0*X", width, value))
}

// sendProbe addresses the adapter to txID via ATSH and sends payloadHex,
// returning the ECU-grouped, PCI-merged response.
func sendProbe(d *elm.Driver, txID, payloadHex string, timeout time.Duration) map[string][]string {
	_, _ = d.SendRawLines("ATSH"+txID, time.Second)

	savedSilence, savedMinWait := d.SilenceTimeout, d.MinWaitBeforeSilence
	d.SilenceTimeout = 50 * time.Millisecond
	d.MinWaitBeforeSilence = maxDur(50*time.Millisecond, timeout/2)
	defer func() {
		d.SilenceTimeout = savedSilence
		d.MinWaitBeforeSilence = savedMinWait
	}()

	lines, err := d.SendRawLines(payloadHex, timeout)
	if err != nil {
		return nil
	}

	grouped := protocol.GroupByECU(lines, true)
	return protocol.MergePayloads(grouped, true)
}

func maxDur(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// matchResponse reports whether payload contains the positive response
// (requestSID+0x40) or a negative response (7F <requestSID> <nrc>) for
// requestSID, at any offset after ISO-TP PCI stripping.
func matchResponse(payload []string, requestSID int) bool {
	if len(payload) == 0 {
		return false
	}
	cleaned := protocol.StripISOTPPCI(payload)
	if len(cleaned) == 0 {
		return false
	}
	pos := fmt.Sprintf("%02X", (requestSID+0x40)&0xFF)
	req := fmt.Sprintf("%02X", requestSID)
	for i, tok := range cleaned {
		up := strings.ToUpper(tok)
		if up == pos {
			return true
		}
		if up == "7F" && i+1 < len(cleaned) && strings.EqualFold(cleaned[i+1], req) {
			return true
		}
	}
	return false
}

// detectSecurity reports whether payload is a "security access denied"
// (0x33 NRC) negative response to requestSID.
func detectSecurity(payload []string, requestSID int) bool {
	cleaned := protocol.StripISOTPPCI(payload)
	if len(cleaned) < 3 {
		return false
	}
	req := fmt.Sprintf("%02X", requestSID)
	for i := 0; i+2 < len(cleaned); i++ {
		if strings.EqualFold(cleaned[i], "7F") && strings.EqualFold(cleaned[i+1], req) {
			return strings.EqualFold(cleaned[i+2], "33")
		}
	}
	return false
}

// extractVIN looks for the "62 F1 90" Read-DID-response marker in payload
// and decodes the VIN that follows it.
func extractVIN(payload []string) (string, bool) {
	cleaned := protocol.StripISOTPPCI(payload)
	for i := 0; i+3 <= len(cleaned); i++ {
		if strings.EqualFold(cleaned[i], "62") && strings.EqualFold(cleaned[i+1], "F1") && strings.EqualFold(cleaned[i+2], "90") {
			vin := protocol.ExtractASCIIFromHexTokens(cleaned[i+3:])
			if protocol.IsValidVIN(vin) {
				return vin, true
			}
		}
	}
	return "", false
}

// parseDTCSummary decodes a Read-DTC-Information (0x59 0x02) response into
// counts by top-nibble DTC letter.
func parseDTCSummary(payload []string) map[string]int {
	cleaned := protocol.StripISOTPPCI(payload)
	if len(cleaned) < 3 || !strings.EqualFold(cleaned[0], "59") || !strings.EqualFold(cleaned[1], "02") {
		return nil
	}
	dtcTokens := cleaned[3:]
	if len(dtcTokens) == 0 {
		return nil
	}
	counts := map[string]int{"P": 0, "C": 0, "B": 0, "U": 0}
	letters := [4]string{"P", "C", "B", "U"}
	for i := 0; i+3 < len(dtcTokens); i += 4 {
		b0, err := hexByte(dtcTokens[i])
		if err != nil {
			continue
		}
		counts[letters[(b0&0xC0)>>6]]++
	}
	return counts
}

func hexByte(tok string) (byte, error) {
	v, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// classifyFromDTCs picks the dominant DTC letter's module category.
func classifyFromDTCs(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	dominantLetter, dominantCount := "", -1
	for letter, count := range counts {
		if count > dominantCount {
			dominantLetter, dominantCount = letter, count
		}
	}
	if dominantCount <= 0 {
		return ""
	}
	switch dominantLetter {
	case "C":
		return "ABS/ESC (chassis)"
	case "P":
		return "Powertrain / Engine"
	case "B":
		return "Body / BCM"
	case "U":
		return "Network / Gateway"
	}
	return ""
}

// brandHintFromVIN maps a VIN's WMI prefix to a known brand catalog key.
func brandHintFromVIN(vin string) string {
	if len(vin) < 3 {
		return ""
	}
	wmi := strings.ToUpper(vin[:3])
	switch wmi {
	case "1C4", "1C6", "1C3", "1C8", "2C4", "3C4":
		return "jeep"
	case "SAL", "SAJ":
		return "land_rover"
	}
	return ""
}
