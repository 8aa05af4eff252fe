package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mertcelik/eduledger/internal/app/models"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository works both standalone and inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore handles user records
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// OfferingStore is the read-only catalog contract plus the insert used by
// seeding. The ledger core never mutates offerings.
type OfferingStore interface {
	GetByID(ctx context.Context, id int64) (*models.Offering, error)
	GetAll(ctx context.Context) ([]*models.Offering, error)
	Create(ctx context.Context, offering *models.Offering) error
}

// LicenseStore handles license grants
type LicenseStore interface {
	Get(ctx context.Context, learnerID, offeringID int64) (*models.License, error)
	Create(ctx context.Context, license *models.License) error
	// Reinitialize clears any residual period quantity under the existing
	// grant identifier, then applies the new purchase to the same row.
	Reinitialize(ctx context.Context, licenseID int64, periods int64, expiresAt, renewedAt time.Time) error
	Renew(ctx context.Context, licenseID int64, addPeriods int64, expiresAt, renewedAt time.Time) error
	Deactivate(ctx context.Context, licenseID int64) error
}

// ProgressStore handles unit completions and the cached per-offering counters
type ProgressStore interface {
	InsertUnit(ctx context.Context, progress *models.UnitProgress) error
	GetUnits(ctx context.Context, learnerID, offeringID int64) ([]*models.UnitProgress, error)
	GetCompletion(ctx context.Context, learnerID, offeringID int64) (*models.OfferingCompletion, error)
	SaveCompletion(ctx context.Context, completion *models.OfferingCompletion) error
}

// CredentialStore handles credentials, their append-only offering entries,
// creator price overrides and the payment-commitment replay guard
type CredentialStore interface {
	GetByLearner(ctx context.Context, learnerID int64) (*models.Credential, error)
	GetByID(ctx context.Context, id int64) (*models.Credential, error)
	Create(ctx context.Context, credential *models.Credential) error
	Update(ctx context.Context, credential *models.Credential) error
	AppendEntry(ctx context.Context, entry *models.CredentialEntry) error
	GetEntries(ctx context.Context, credentialID int64) ([]*models.CredentialEntry, error)
	SetValidity(ctx context.Context, id int64, valid bool, reason *string) error
	ConsumeCommitment(ctx context.Context, commitment string, learnerID int64, at time.Time) error
	GetPriceOverride(ctx context.Context, offeringID int64, kind models.PriceKind) (*models.CredentialPrice, error)
	UpsertPriceOverride(ctx context.Context, price *models.CredentialPrice) error
}

// AccountStore handles native-unit balances
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetWalletByOwner(ctx context.Context, userID int64) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	// AddBalance applies a signed delta; a debit below zero fails with
	// ErrInsufficientBalance and leaves the row untouched.
	AddBalance(ctx context.Context, id string, delta int64) error
}

// SettingsStore handles the single platform settings row
type SettingsStore interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Update(ctx context.Context, settings *models.PlatformSettings) error
}

// EventStore appends observability records
type EventStore interface {
	Insert(ctx context.Context, event *models.LedgerEvent) error
}

// Store aggregates all repositories behind one handle. ExecTx yields a view
// of the same store bound to a single database transaction; services run
// every state-changing action through it so an error discards all mutations
// of that action.
type Store interface {
	Users() UserStore
	Offerings() OfferingStore
	Licenses() LicenseStore
	Progress() ProgressStore
	Credentials() CredentialStore
	Accounts() AccountStore
	Settings() SettingsStore
	Events() EventStore
	ExecTx(ctx context.Context, fn func(Store) error) error
}
