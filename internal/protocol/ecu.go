package protocol

// GroupByECU buckets raw adapter lines by ECU header token. With headers
// off there is no per-ECU addressing, so everything collects under "NOHDR".
func GroupByECU(lines []string, headersOn bool) map[string][][]string {
	out := make(map[string][][]string)
	for _, ln := range lines {
		if ln == "" || IsNoise(ln) {
			continue
		}
		tokens := NormalizeTokens(ln)
		if len(tokens) == 0 || !IsHexishTokens(tokens) {
			continue
		}
		ecu := "NOHDR"
		if headersOn {
			ecu = tokens[0]
		}
		out[ecu] = append(out[ecu], tokens)
	}
	return out
}

// MergePayloads flattens every line's tokens, per ECU, into one payload.
func MergePayloads(grouped map[string][][]string, headersOn bool) map[string][]string {
	merged := make(map[string][]string, len(grouped))
	for ecu, msgs := range grouped {
		var out []string
		for _, msg := range msgs {
			out = append(out, PayloadFromTokens(msg, headersOn)...)
		}
		merged[ecu] = out
	}
	return merged
}

// FindOBDResponsePayload finds the first ECU whose payload contains
// expectedPrefix and returns that ECU's id plus the payload from the match
// onward. preferECUs, when given, is tried before the remaining ECUs in
// whatever order the map yields them.
func FindOBDResponsePayload(mergedPayloads map[string][]string, expectedPrefix []string, preferECUs []string) (string, []string, bool) {
	if len(mergedPayloads) == 0 || len(expectedPrefix) == 0 {
		return "", nil, false
	}

	seen := make(map[string]bool, len(mergedPayloads))
	var ecuOrder []string
	for _, e := range preferECUs {
		if _, ok := mergedPayloads[e]; ok && !seen[e] {
			ecuOrder = append(ecuOrder, e)
			seen[e] = true
		}
	}
	for e := range mergedPayloads {
		if !seen[e] {
			ecuOrder = append(ecuOrder, e)
			seen[e] = true
		}
	}

	n := len(expectedPrefix)
	for _, ecu := range ecuOrder {
		payload := mergedPayloads[ecu]
		if len(payload) < n {
			continue
		}
		for i := 0; i <= len(payload)-n; i++ {
			if tokensEqual(payload[i:i+n], expectedPrefix) {
				return ecu, payload[i:], true
			}
		}
	}
	return "", nil, false
}

func tokensEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
