package kline

import (
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
)

// ProbeAttempt records one verify probe's outcome during detection.
type ProbeAttempt struct {
	Probe   string
	Matched bool
	Reason  string
}

// CandidateAttempt records one profile candidate's full detection attempt.
type CandidateAttempt struct {
	Profile Profile
	Applied bool
	Matched bool
	Reason  string
	Elapsed time.Duration
}

// DetectReport is the outcome of trying every candidate profile in order.
type DetectReport struct {
	Attempts []CandidateAttempt
	Matched  *Profile
}

// DetectProfile applies and verifies each candidate in order, returning
// the first one that verifies successfully.
func DetectProfile(d *elm.Driver, candidates []Profile, policy Policy) (*Profile, error) {
	profile, _, err := DetectProfileReport(d, candidates, policy)
	return profile, err
}

// DetectProfileReport behaves like DetectProfile but also returns the
// full per-candidate attempt history, for debugging and telemetry.
func DetectProfileReport(d *elm.Driver, candidates []Profile, policy Policy) (*Profile, DetectReport, error) {
	report := DetectReport{}

	for _, candidate := range candidates {
		start := time.Now()
		attempt := CandidateAttempt{Profile: candidate}

		if err := ApplyProfile(d, candidate); err != nil {
			attempt.Reason = err.Error()
			attempt.Elapsed = time.Since(start)
			report.Attempts = append(report.Attempts, attempt)
			continue
		}
		attempt.Applied = true

		ok, reason := VerifyProfile(d, candidate, policy)
		attempt.Matched = ok
		attempt.Reason = reason
		attempt.Elapsed = time.Since(start)
		report.Attempts = append(report.Attempts, attempt)

		if ok {
			matched := candidate
			report.Matched = &matched
			return &matched, report, nil
		}
	}

	return nil, report, NewDetectError("no K-Line profile candidate verified", Context{}, nil)
}
