// Package delay implements the priority-tiered flood-control policy: the
// more entries a source has already queued in the current cycle, the later
// the next notification is scheduled, with urgent tiers sent immediately.
package delay

import (
	"fmt"
	"time"
)

// Band describes the graduated delay for one priority tier: Base for the
// first queued entry, plus Step for every additional one.
type Band struct {
	Base time.Duration
	Step time.Duration
}

// Policy maps priority tiers to delay bands. Tiers at or above
// UrgentThreshold are always immediate. Tiers without an explicit band use
// Fallback, the slowest schedule.
type Policy struct {
	UrgentThreshold int
	Bands           map[int]Band
	Fallback        Band
}

// Default returns the reference policy: tier 4 seconds-scale, tier 3
// minutes-scale, everything below the longest band, tier 5+ immediate.
func Default() Policy {
	return Policy{
		UrgentThreshold: 5,
		Bands: map[int]Band{
			4: {Base: 10 * time.Second, Step: 30 * time.Second},
			3: {Base: 5 * time.Minute, Step: 5 * time.Minute},
		},
		Fallback: Band{Base: 15 * time.Minute, Step: 10 * time.Minute},
	}
}

// For computes the delay for the given tier and 0-based position in the
// source's batch. Zero means immediate send.
func (p Policy) For(tier, sequence int) time.Duration {
	if tier >= p.UrgentThreshold {
		return 0
	}
	if sequence < 0 {
		sequence = 0
	}

	band, ok := p.Bands[tier]
	if !ok {
		band = p.Fallback
	}
	return band.Base + time.Duration(sequence)*band.Step
}

// Token renders a delay as an ntfy header value ("40s", "5m"). Empty for
// immediate sends.
func Token(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
