package kline

import (
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
)

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func normalizeAT(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return cmd
	}
	if strings.HasPrefix(strings.ToUpper(cmd), "AT") {
		return cmd
	}
	return "AT " + cmd
}

// SendATLines sends an AT command and returns the adapter's raw lines.
func SendATLines(d *elm.Driver, cmd string, timeout time.Duration) ([]string, error) {
	return d.SendRawLines(normalizeAT(cmd), timeout)
}

// SendOBDLines sends an OBD request (e.g. "0100") and returns raw lines.
func SendOBDLines(d *elm.Driver, cmd string, timeout time.Duration) ([]string, error) {
	return d.SendRawLines(strings.ToUpper(strings.TrimSpace(cmd)), timeout)
}

// Attempt records one query attempt's outcome, for reporting/telemetry.
type Attempt struct {
	Attempt      int
	Elapsed      time.Duration
	Kind         ResponseKind
	LinesPreview []string
}

// Report is the full attempt history for one query.
type Report struct {
	Command  string
	Attempts []Attempt
}

// Summary renders a one-line human summary of the last attempt.
func (r Report) Summary() string {
	if len(r.Attempts) == 0 {
		return "no attempts"
	}
	last := r.Attempts[len(r.Attempts)-1]
	return r.Command + ": last=" + string(last.Kind)
}

func doWarmup(d *elm.Driver, policy Policy, qs QuirkSet, timeout time.Duration) {
	if !policy.WarmupEnabled {
		return
	}
	retryOnNoData := qs.Enabled(QuirkRetryOnNoData, false)
	ignoreUnableToConnect := qs.Enabled(QuirkIgnoreUnableToConnect, false)

	attempts := policy.WarmupAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		lines, err := SendOBDLines(d, policy.WarmupProbe, timeout)
		if err != nil {
			return
		}
		if ResponseIsHardFail(lines) {
			return
		}
		if ClassifyResponse(lines) == ResponseOK {
			sleep(policy.WarmupDelay)
			return
		}
		if !IsRetryableResponse(lines, retryOnNoData, ignoreUnableToConnect) {
			return
		}
		sleep(policy.InterRequestDelay)
	}
}

// QueryWithPolicy runs cmd under policy's retries/delays/backoff, with no
// profile-specific quirks or warmup applied.
func QueryWithPolicy(d *elm.Driver, cmd string, policy Policy, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = policy.Timeout
	}
	sleep(policy.InitialSettleDelay)

	var lastLines []string
	var lastErr error
	for attempt := 0; attempt <= policy.Retries; attempt++ {
		lastLines, lastErr = SendOBDLines(d, cmd, timeout)
		if lastErr != nil {
			return lastLines, lastErr
		}
		if ResponseIsHardFail(lastLines) {
			return lastLines, nil
		}
		if ClassifyResponse(lastLines) == ResponseOK {
			return lastLines, nil
		}
		sleep(policy.InterRequestDelay)
		if policy.Backoff > 0 {
			sleep(policy.Backoff * time.Duration(attempt))
		}
	}
	return lastLines, lastErr
}

// QueryProfile runs cmd using profile's quirks layered on basePolicy,
// including a warmup probe when the profile requires one.
func QueryProfile(d *elm.Driver, cmd string, profile Profile, basePolicy Policy, timeout time.Duration) ([]string, error) {
	pol := PolicyForProfile(profile, basePolicy)
	qs := profile.Quirks
	if timeout <= 0 {
		timeout = pol.Timeout
	}

	retryOnNoData := qs.Enabled(QuirkRetryOnNoData, false)
	ignoreUnableToConnect := qs.Enabled(QuirkIgnoreUnableToConnect, false)

	sleep(pol.InitialSettleDelay)
	doWarmup(d, pol, qs, timeout)

	var lastLines []string
	var lastErr error
	for attempt := 0; attempt <= pol.Retries; attempt++ {
		lastLines, lastErr = SendOBDLines(d, cmd, timeout)
		if lastErr != nil {
			return lastLines, lastErr
		}
		if ResponseIsHardFail(lastLines) {
			return lastLines, nil
		}
		if ClassifyResponse(lastLines) == ResponseOK {
			return lastLines, nil
		}
		if !IsRetryableResponse(lastLines, retryOnNoData, ignoreUnableToConnect) {
			return lastLines, nil
		}
		sleep(pol.InterRequestDelay)
		if pol.Backoff > 0 {
			sleep(pol.Backoff * time.Duration(attempt))
		}
	}
	return lastLines, lastErr
}

// QueryProfileReport behaves like QueryProfile but also returns the full
// per-attempt history, for debugging and telemetry.
func QueryProfileReport(d *elm.Driver, cmd string, profile Profile, basePolicy Policy, timeout time.Duration) ([]string, Report, error) {
	pol := PolicyForProfile(profile, basePolicy)
	qs := profile.Quirks
	if timeout <= 0 {
		timeout = pol.Timeout
	}

	retryOnNoData := qs.Enabled(QuirkRetryOnNoData, false)
	ignoreUnableToConnect := qs.Enabled(QuirkIgnoreUnableToConnect, false)
	report := Report{Command: cmd}

	sleep(pol.InitialSettleDelay)
	doWarmup(d, pol, qs, timeout)

	var lastLines []string
	for attempt := 0; attempt <= pol.Retries; attempt++ {
		start := time.Now()
		lines, err := SendOBDLines(d, cmd, timeout)
		elapsed := time.Since(start)
		lastLines = lines

		kind := ClassifyResponse(lines)
		preview := lines
		if len(preview) > 3 {
			preview = preview[:3]
		}
		report.Attempts = append(report.Attempts, Attempt{Attempt: attempt, Elapsed: elapsed, Kind: kind, LinesPreview: preview})

		if err != nil {
			return lines, report, err
		}
		if ResponseIsHardFail(lines) {
			return lines, report, nil
		}
		if kind == ResponseOK {
			return lines, report, nil
		}
		if !IsRetryableResponse(lines, retryOnNoData, ignoreUnableToConnect) {
			return lines, report, nil
		}
		sleep(pol.InterRequestDelay)
		if pol.Backoff > 0 {
			sleep(pol.Backoff * time.Duration(attempt))
		}
	}
	return lastLines, report, nil
}
