package obd

import (
	"math"
	"strconv"
)

// DecodePIDResponse decodes hexData (the bytes following "41<pid>") using
// the descriptor's formula shape. 1-byte formulas take A; 2-byte formulas
// take A and B. Returns false if pid is unknown or hexData is too short.
func DecodePIDResponse(pid, hexData string) (float64, bool) {
	info, ok := PIDs[pid]
	if !ok {
		return 0, false
	}

	switch info.Bytes {
	case 1:
		if len(hexData) < 2 {
			return 0, false
		}
		a, err := strconv.ParseInt(hexData[0:2], 16, 32)
		if err != nil {
			return 0, false
		}
		return info.eval(int(a), 0), true
	case 2:
		if len(hexData) < 4 {
			return 0, false
		}
		a, err1 := strconv.ParseInt(hexData[0:2], 16, 32)
		b, err2 := strconv.ParseInt(hexData[2:4], 16, 32)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return info.eval(int(a), int(b)), true
	default:
		return 0, false
	}
}

// Round rounds v to places decimal digits, the caller-specified precision
// Mode 01 reads apply (default 2).
func Round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}

// GetPIDInfo returns the descriptor for pid, normalizing a bare single hex
// digit ("C") to the two-digit form ("0C").
func GetPIDInfo(pid string) (PID, bool) {
	pid = normalizePID(pid)
	info, ok := PIDs[pid]
	return info, ok
}

func normalizePID(pid string) string {
	if len(pid) == 1 {
		return "0" + pid
	}
	return pid
}
