package protocol

import "strconv"

// PayloadFromTokens drops the ECU header token (when headersOn) and applies
// the ISO-TP length-byte heuristic: the token following the header is
// dropped only when it parses as a plausible byte count for what remains.
func PayloadFromTokens(tokens []string, headersOn bool) []string {
	if len(tokens) == 0 {
		return nil
	}

	rest := tokens
	if headersOn {
		rest = tokens[1:]
	}
	if len(rest) == 0 {
		return nil
	}

	lnTok := rest[0]
	if len(lnTok) == 1 || len(lnTok) == 2 {
		if ln, err := strconv.ParseInt(lnTok, 16, 32); err == nil {
			remaining := len(rest) - 1
			if ln > 0 && int(ln) <= remaining {
				return rest[1:]
			}
		}
	}

	return rest
}
