package kline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/protocol"
)

// StripNoise discards adapter chatter lines, keeping only data-looking ones.
func StripNoise(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if !protocol.IsNoise(ln) {
			out = append(out, ln)
		}
	}
	return out
}

// ExtractHexBlob joins every hex-ish token across lines into one blob.
func ExtractHexBlob(lines []string) string {
	var sb strings.Builder
	for _, ln := range lines {
		for _, tok := range protocol.NormalizeTokens(ln) {
			sb.WriteString(tok)
		}
	}
	return sb.String()
}

// ProbeOK reports whether a probe's raw response looks like it actually
// answered (mode 01/02 positive response is request+0x40, mode 09 "49").
func ProbeOK(probe string, lines []string) bool {
	if ResponseIsHardFail(lines) || ClassifyResponse(lines) != ResponseOK {
		return false
	}
	cleaned := StripNoise(lines)
	if len(cleaned) == 0 {
		return false
	}
	blob := strings.ToUpper(ExtractHexBlob(cleaned))
	probe = strings.ToUpper(strings.TrimSpace(probe))
	if len(probe) < 2 {
		return blob != ""
	}
	mode, err := modeByte(probe)
	if err != nil {
		return blob != ""
	}
	expected := fmt.Sprintf("%02X", mode+0x40)
	return strings.Contains(blob, expected)
}

func modeByte(probe string) (byte, error) {
	if len(probe) < 2 {
		return 0, fmt.Errorf("probe %q too short", probe)
	}
	v, err := strconv.ParseUint(probe[:2], 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// VerifyProfile confirms profile actually talks to the vehicle by trying
// each of its verify probes under full policy/quirk/warmup handling,
// stopping at the first one that looks like a real answer.
func VerifyProfile(d *elm.Driver, profile Profile, policy Policy) (bool, string) {
	probes := profile.VerifyOBD
	if len(probes) == 0 {
		probes = defaultVerifyProbes()
	}

	for _, probe := range probes {
		lines, err := QueryProfile(d, probe, profile, policy, 0)
		if err != nil {
			return false, "transport error: " + err.Error()
		}
		if ProbeOK(probe, lines) {
			cleaned := StripNoise(lines)
			blob := ExtractHexBlob(cleaned)
			if blob == "" {
				blob = ExtractHexBlob(lines)
			}
			preview := lines
			if len(preview) > 3 {
				preview = preview[:3]
			}
			return true, "probe " + probe + " matched; lines=" + strings.Join(preview, "|") + " hex=" + truncate(blob, 24)
		}
	}
	return false, "all probes failed: " + strings.Join(probes, ",")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
