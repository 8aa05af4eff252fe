package models

import "time"

// Credential is a learner's single, cumulative, non-transferable completion
// record. It is created on the first qualifying completion and grows by one
// entry per subsequent one. There is no transfer operation; the only
// mutations are issuance, growth, content-ref refresh and revocation.
type Credential struct {
	ID             int64     `json:"id" db:"id"`
	LearnerID      int64     `json:"learnerId" db:"learner_id"`
	DisplayName    string    `json:"displayName" db:"display_name"`
	Valid          bool      `json:"valid" db:"valid"`
	ContentRef     string    `json:"contentRef" db:"content_ref"`
	IssuedAt       time.Time `json:"issuedAt" db:"issued_at"`
	LastUpdated    time.Time `json:"lastUpdated" db:"last_updated"`
	LastCommitment string    `json:"lastCommitment" db:"last_commitment"`
	RevokedReason  *string   `json:"revokedReason,omitempty" db:"revoked_reason"`

	// OfferingIDs is the cumulative offering list in append order.
	OfferingIDs []int64 `json:"offeringIds,omitempty"`
}

// CredentialEntry is one append-only element of a credential's cumulative
// offering list.
type CredentialEntry struct {
	CredentialID int64     `json:"credentialId" db:"credential_id"`
	OfferingID   int64     `json:"offeringId" db:"offering_id"`
	Position     int       `json:"position" db:"position"`
	EarnedAt     time.Time `json:"earnedAt" db:"earned_at"`
}

// CredentialPrice is a creator's per-offering override of the ledger default
// price for one price kind.
type CredentialPrice struct {
	OfferingID int64     `json:"offeringId" db:"offering_id"`
	Kind       PriceKind `json:"kind" db:"kind"`
	Price      int64     `json:"price" db:"price"`
}
