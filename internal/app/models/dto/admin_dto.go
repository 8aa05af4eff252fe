package dto

import "github.com/mertcelik/eduledger/internal/app/models"

// SetDefaultPriceRequest changes a ledger-wide default credential price
type SetDefaultPriceRequest struct {
	Kind  models.PriceKind `json:"kind" binding:"required,oneof=MINT GROWTH"`
	Value int64            `json:"value" binding:"required,min=0"`
}

// SetFeeSplitRequest changes the platform share of settlements
type SetFeeSplitRequest struct {
	Bps *int `json:"bps" binding:"required,min=0,max=10000"`
}

// SetSettlementAddressRequest points the platform share at another treasury account
type SetSettlementAddressRequest struct {
	AccountID string `json:"accountId" binding:"required,uuid"`
}

// CreditAccountRequest funds a wallet with the native settlement unit
type CreditAccountRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// SettingsResponse mirrors the platform settings row
type SettingsResponse struct {
	Paused             bool   `json:"paused"`
	FeeBps             int    `json:"feeBps"`
	DefaultMintPrice   int64  `json:"defaultMintPrice"`
	DefaultGrowthPrice int64  `json:"defaultGrowthPrice"`
	TreasuryAccountID  string `json:"treasuryAccountId"`
}
