package dto

import "time"

// PurchaseLicenseRequest represents a license purchase
type PurchaseLicenseRequest struct {
	OfferingID int64 `json:"offeringId" binding:"required,min=1"`
	Periods    int   `json:"periods" binding:"required,min=1"`
	Payment    int64 `json:"payment" binding:"required,min=1"`
}

// RenewLicenseRequest represents a renewal of an existing license
type RenewLicenseRequest struct {
	OfferingID int64 `json:"offeringId" binding:"required,min=1"`
	Periods    int   `json:"periods" binding:"required,min=1"`
	Payment    int64 `json:"payment" binding:"required,min=1"`
}

// LicenseResponse represents a license grant
type LicenseResponse struct {
	ID               int64     `json:"id"`
	LearnerID        int64     `json:"learnerId"`
	OfferingID       int64     `json:"offeringId"`
	PeriodsPurchased int64     `json:"periodsPurchased"`
	ExpiresAt        time.Time `json:"expiresAt"`
	Active           bool      `json:"active"`
	IssuedAt         time.Time `json:"issuedAt"`
}

// LicenseValidityResponse reports whether a grant currently confers access
type LicenseValidityResponse struct {
	LearnerID  int64 `json:"learnerId"`
	OfferingID int64 `json:"offeringId"`
	Valid      bool  `json:"valid"`
}
