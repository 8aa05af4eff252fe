package models

// RoleType defines the user role type
type RoleType string

const (
	RoleLearner RoleType = "LEARNER"
	RoleCreator RoleType = "CREATOR"
	RoleAdmin   RoleType = "ADMIN"
)

// PriceKind distinguishes the two credential price points an offering creator
// can override.
type PriceKind string

const (
	PriceKindMint   PriceKind = "MINT"
	PriceKindGrowth PriceKind = "GROWTH"
)

// EventKind identifies a ledger observability record.
type EventKind string

const (
	EventLicenseGranted     EventKind = "license.granted"
	EventLicenseRenewed     EventKind = "license.renewed"
	EventLicenseExpired     EventKind = "license.expired"
	EventUnitCompleted      EventKind = "unit.completed"
	EventOfferingCompleted  EventKind = "offering.completed"
	EventCredentialIssued   EventKind = "credential.issued"
	EventCredentialGrown    EventKind = "credential.grown"
	EventCredentialUpdated  EventKind = "credential.updated"
	EventCredentialRevoked  EventKind = "credential.revoked"
	EventAccountCredited    EventKind = "account.credited"
	EventSettingsChanged    EventKind = "settings.changed"
)
