package entity

import "time"

// DefaultDailyLimit is the number of quota-consuming calls an anonymous caller gets per window.
const DefaultDailyLimit = 5

// QuotaDecision is the outcome of one check-and-consume against the quota store.
type QuotaDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// AdmissionResult is what the admission gate hands to the boundary.
// Bypassed is set for authenticated callers; Remaining then equals the limit and ResetAt is zero.
type AdmissionResult struct {
	Proceed   bool
	Remaining int
	ResetAt   time.Time
	Bypassed  bool
}

// StartOfNextDay returns local midnight following now, in now's location.
func StartOfNextDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
