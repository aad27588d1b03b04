package kline

import "time"

// Policy tunes how a query runs on top of a profile: retries, delays,
// and optional warmup probing for ECUs that are slow to wake up.
type Policy struct {
	Retries int
	Timeout time.Duration

	InterRequestDelay  time.Duration
	InitialSettleDelay time.Duration
	Backoff            time.Duration

	WarmupEnabled  bool
	WarmupProbe    string
	WarmupAttempts int
	WarmupDelay    time.Duration
}

// DefaultPolicy matches the conservative defaults used across profiles.
func DefaultPolicy() Policy {
	return Policy{
		Retries:            1,
		Timeout:            4 * time.Second,
		InterRequestDelay:  80 * time.Millisecond,
		InitialSettleDelay: 120 * time.Millisecond,
		Backoff:            50 * time.Millisecond,
		WarmupProbe:        "0100",
		WarmupAttempts:     1,
		WarmupDelay:        100 * time.Millisecond,
	}
}

// PolicyForProfile derives a Policy from base (DefaultPolicy() if zero),
// the profile's own timeout, and its quirks.
func PolicyForProfile(profile Profile, base Policy) Policy {
	p := base
	if p.Timeout == 0 && p.Retries == 0 && p.WarmupProbe == "" {
		p = DefaultPolicy()
	}
	qs := profile.Quirks

	p.Timeout = profile.RequestTimeout

	if qs.Enabled(QuirkRequireWarmupProbe, false) {
		p.WarmupEnabled = true
		if p.WarmupAttempts < 1 {
			p.WarmupAttempts = 1
		}
	}

	if qs.Enabled(QuirkExtraInterRequestDelay, false) {
		if p.InterRequestDelay < 120*time.Millisecond {
			p.InterRequestDelay = 120 * time.Millisecond
		}
	}

	return p
}
