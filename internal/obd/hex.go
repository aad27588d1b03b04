package obd

import "strconv"

// hexByte parses a single hex-token string into its byte value.
func hexByte(tok string) (byte, error) {
	v, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
