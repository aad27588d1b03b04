package transport

import (
	"strings"
	"time"
)

// wrapTimeout is the short per-read deadline physical transports use
// internally so Exchange's polling loop can re-check its own timers.
const wrapTimeout = 20 * time.Millisecond

// meaningfulLine reports whether line counts as "data" for the purposes of
// the early-termination rule in Exchange — noise chatter like SEARCHING or
// BUS INIT does not end a read early just because a prompt follows it.
func meaningfulLine(line string) bool {
	up := strings.ToUpper(strings.TrimSpace(line))
	if up == "" {
		return false
	}
	if strings.HasPrefix(up, "SEARCHING") || strings.HasPrefix(up, "BUS INIT") {
		return false
	}
	return true
}

// Exchange writes command+CR to t and reads the response, terminating when:
//
//   - the prompt byte '>' has been seen AND at least one meaningful line is
//     present in the buffer so far, or
//   - minWaitBeforeSilence has elapsed overall AND no new byte has arrived
//     for silenceTimeout, or
//   - timeout has been reached.
//
// The accumulated buffer is then split on CR/LF/'>', trimmed, and emptied
// of blank lines.
func Exchange(t Transport, command string, timeout, silenceTimeout, minWaitBeforeSilence time.Duration, raw RawLogger) ([]string, error) {
	if err := t.Flush(); err != nil {
		return nil, classifyIOError(err)
	}

	if raw != nil {
		raw("TX", command, nil)
	}

	if _, err := t.Write([]byte(command + "\r")); err != nil {
		return nil, classifyIOError(err)
	}

	var buf []byte
	start := time.Now()
	lastRX := start
	chunk := make([]byte, 256)

	for {
		now := time.Now()
		if now.Sub(start) > timeout {
			break
		}

		n, err := t.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			lastRX = time.Now()

			if strings.ContainsRune(string(buf), '>') && hasMeaningfulLine(buf) {
				break
			}
		}
		if err != nil {
			if isTimeoutLike(err) {
				if now.Sub(start) >= minWaitBeforeSilence && time.Since(lastRX) > silenceTimeout {
					break
				}
				continue
			}
			return nil, classifyIOError(err)
		}
		if n == 0 {
			if now.Sub(start) >= minWaitBeforeSilence && time.Since(lastRX) > silenceTimeout {
				break
			}
			time.Sleep(2 * time.Millisecond)
		}
	}

	lines := splitLines(string(buf))
	if raw != nil {
		raw("RX", command, lines)
	}
	return lines, nil
}

func hasMeaningfulLine(buf []byte) bool {
	for _, ln := range splitLines(string(buf)) {
		if meaningfulLine(ln) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, ">", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// isTimeoutLike reports whether err is the kind of transient read timeout a
// serial/TCP deadline produces, as opposed to a real disconnect. Transports
// implement this by returning an error satisfying the net.Error Timeout()
// convention, or os.ErrDeadlineExceeded.
func isTimeoutLike(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return false
}
