package models

import "time"

// AccountKind distinguishes user wallets from the platform treasury.
type AccountKind string

const (
	AccountWallet   AccountKind = "WALLET"
	AccountTreasury AccountKind = "TREASURY"
)

// Account holds a balance of the native settlement unit. Every user owns one
// wallet; the platform fee share accrues to the treasury account configured
// in the platform settings.
type Account struct {
	ID          string      `json:"id" db:"id"`
	OwnerUserID *int64      `json:"ownerUserId,omitempty" db:"owner_user_id"`
	Kind        AccountKind `json:"kind" db:"kind"`
	Balance     int64       `json:"balance" db:"balance"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// PlatformSettings is the single admin-mutable configuration row shared by
// all ledger actions. It is read inside the same transaction as the action it
// parameterizes.
type PlatformSettings struct {
	Paused             bool   `json:"paused" db:"paused"`
	FeeBps             int    `json:"feeBps" db:"fee_bps"`
	DefaultMintPrice   int64  `json:"defaultMintPrice" db:"default_mint_price"`
	DefaultGrowthPrice int64  `json:"defaultGrowthPrice" db:"default_growth_price"`
	TreasuryAccountID  string `json:"treasuryAccountId" db:"treasury_account_id"`
}
