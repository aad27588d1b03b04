package uds

import (
	"fmt"
	"strings"
)

// DecodeASCII trims printable ASCII bytes (ignoring anything else).
func DecodeASCII(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		}
	}
	return strings.TrimSpace(sb.String())
}

// DecodeUint decodes data as a big-endian unsigned integer.
func DecodeUint(data []byte) uint64 {
	var v uint64
	for _, b := range data {
		v = (v << 8) | uint64(b)
	}
	return v
}

// DecodeHex renders data as uppercase hex.
func DecodeHex(data []byte) string {
	return fmt.Sprintf("%X", data)
}

// DecodeDIDValue decodes data per the catalog entry's decoder field
// ("ascii", "uint", or the "hex" fallback).
func DecodeDIDValue(decoder string, data []byte) any {
	switch strings.ToLower(decoder) {
	case "ascii":
		return DecodeASCII(data)
	case "uint":
		return DecodeUint(data)
	default:
		return DecodeHex(data)
	}
}
