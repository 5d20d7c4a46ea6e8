package domain

import "time"

// Delegation state machine:
//
//	pending -> accepted | rejected
//	accepted -> active (window start reached) -> expired (window end passed)
//	any -> expired when superseded by a new delegation
//
// The stored status is NOT rewritten automatically when the window moves;
// readers derive a display status and the reconciliation job repairs rows
// whose stored status has gone stale.

// DisplayStatus reconciles the stored status against the validity window
// at the given instant. The stored value is left untouched.
func (ta *TempApprover) DisplayStatus(now time.Time) TempApproverStatus {
	if now.After(ta.EndDate) {
		return TempApproverStatusExpired
	}
	if ta.Status == TempApproverStatusAccepted && !now.Before(ta.StartDate) {
		return TempApproverStatusActive
	}
	return ta.Status
}

// NeedsStatusUpdate reports whether the stored status disagrees with the
// window-derived status, signaling a stale record.
func (ta *TempApprover) NeedsStatusUpdate(now time.Time) bool {
	return ta.DisplayStatus(now) != ta.Status
}

// IsActiveAt reports whether the delegate may approve at the given instant:
// the record was accepted and now falls within [start, end].
func (ta *TempApprover) IsActiveAt(now time.Time) bool {
	status := ta.DisplayStatus(now)
	return status == TempApproverStatusActive ||
		(status == TempApproverStatusAccepted && !now.Before(ta.StartDate) && !now.After(ta.EndDate))
}

// IsPhaseExtended derives whether a phase currently runs on an accepted
// extension: true iff some ACCEPTED request's extendedDate string equals
// the phase's current endDate string. Never persisted; recomputed on each
// reload of phases or requests.
func IsPhaseExtended(phase *Phase, requests []PhaseExtensionRequest) bool {
	if phase.EndDate == nil {
		return false
	}
	for i := range requests {
		if requests[i].PhaseID != phase.ID {
			continue
		}
		if requests[i].Status == ExtensionStatusAccepted &&
			SameBudgetDate(requests[i].ExtendedDate, *phase.EndDate) {
			return true
		}
	}
	return false
}
