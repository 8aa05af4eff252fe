package models

import "time"

// License is a time-bound, non-transferable access grant for one learner to
// one offering. The row is keyed by (learner, offering) and its ID is the
// grant identifier, allocated once and reused across expiry/repurchase
// cycles. Rows are never deleted.
type License struct {
	ID               int64     `json:"id" db:"id"`
	LearnerID        int64     `json:"learnerId" db:"learner_id"`
	OfferingID       int64     `json:"offeringId" db:"offering_id"`
	PeriodsPurchased int64     `json:"periodsPurchased" db:"periods_purchased"`
	ExpiresAt        time.Time `json:"expiresAt" db:"expires_at"`
	Active           bool      `json:"active" db:"active"`
	IssuedAt         time.Time `json:"issuedAt" db:"issued_at"`
	RenewedAt        time.Time `json:"renewedAt" db:"renewed_at"`

	// Relations (populated when needed)
	Offering *Offering `json:"offering,omitempty"`
}

// IsValid reports whether the grant confers access at the given instant.
func (l *License) IsValid(now time.Time) bool {
	return l.Active && l.ExpiresAt.After(now)
}
