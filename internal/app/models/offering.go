package models

import "time"

// Offering is a catalog item with purchasable, unit-divided content. The
// ledger core only ever reads offerings; authoring happens outside this
// system (rows arrive via seed data or external tooling).
type Offering struct {
	ID             int64     `json:"id" db:"id"`
	CreatorID      int64     `json:"creatorId" db:"creator_id"`
	Title          string    `json:"title" db:"title"`
	PricePerPeriod int64     `json:"pricePerPeriod" db:"price_per_period"`
	Active         bool      `json:"active" db:"active"`
	UnitCount      int       `json:"unitCount" db:"unit_count"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Creator *User `json:"creator,omitempty"`
}
