package models

import "time"

// LedgerEvent is the structured observability record emitted by every
// state-changing operation. Events carry enough fields for an external
// indexer to reconstruct ledger state; the core never queries them back.
type LedgerEvent struct {
	ID           string                 `json:"id" db:"id"`
	Kind         EventKind              `json:"kind" db:"kind"`
	LearnerID    *int64                 `json:"learnerId,omitempty" db:"learner_id"`
	OfferingID   *int64                 `json:"offeringId,omitempty" db:"offering_id"`
	LicenseID    *int64                 `json:"licenseId,omitempty" db:"license_id"`
	CredentialID *int64                 `json:"credentialId,omitempty" db:"credential_id"`
	Amount       *int64                 `json:"amount,omitempty" db:"amount"`
	Commitment   *string                `json:"commitment,omitempty" db:"commitment"`
	Payload      map[string]interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt    time.Time              `json:"createdAt" db:"created_at"`
}
