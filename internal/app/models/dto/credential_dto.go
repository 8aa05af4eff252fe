package dto

import (
	"time"

	"github.com/mertcelik/eduledger/internal/app/models"
)

// MintOrGrowRequest issues the caller's credential or grows it by one offering
type MintOrGrowRequest struct {
	OfferingID        int64  `json:"offeringId" binding:"required,min=1"`
	DisplayName       string `json:"displayName"`
	ContentRef        string `json:"contentRef" binding:"required"`
	PaymentCommitment string `json:"paymentCommitment" binding:"required"`
	Payment           int64  `json:"payment" binding:"required,min=1"`
	RouteHint         string `json:"routeHint"`
}

// MintOrGrowBatchRequest applies mint-or-grow across several offerings atomically
type MintOrGrowBatchRequest struct {
	OfferingIDs       []int64 `json:"offeringIds" binding:"required,min=1"`
	DisplayName       string  `json:"displayName"`
	ContentRef        string  `json:"contentRef" binding:"required"`
	PaymentCommitment string  `json:"paymentCommitment" binding:"required"`
	Payment           int64   `json:"payment" binding:"required,min=1"`
}

// UpdateContentRefRequest refreshes only the credential's content reference
type UpdateContentRefRequest struct {
	ContentRef        string `json:"contentRef" binding:"required"`
	PaymentCommitment string `json:"paymentCommitment" binding:"required"`
}

// SetPriceRequest overrides an offering's credential price for one kind
type SetPriceRequest struct {
	Kind  models.PriceKind `json:"kind" binding:"required,oneof=MINT GROWTH"`
	Price int64            `json:"price" binding:"required,min=1"`
}

// RevokeCredentialRequest invalidates a credential, keeping it queryable
type RevokeCredentialRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CredentialResponse represents a learner's credential
type CredentialResponse struct {
	ID          int64     `json:"id"`
	LearnerID   int64     `json:"learnerId"`
	DisplayName string    `json:"displayName"`
	Valid       bool      `json:"valid"`
	ContentRef  string    `json:"contentRef"`
	IssuedAt    time.Time `json:"issuedAt"`
	LastUpdated time.Time `json:"lastUpdated"`
	OfferingIDs []int64   `json:"offeringIds"`
}

// CredentialVerifyResponse reports whether a credential exists and is valid
type CredentialVerifyResponse struct {
	CredentialID int64 `json:"credentialId"`
	Valid        bool  `json:"valid"`
}
