package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/db"
)

// SQLStore is the PostgreSQL-backed Store. The zero-tx form queries the pool
// directly; ExecTx hands callers a tx-bound copy.
type SQLStore struct {
	database *db.PostgresDB
	q        DBTX

	users       *UserRepository
	offerings   *OfferingRepository
	licenses    *LicenseRepository
	progress    *ProgressRepository
	credentials *CredentialRepository
	accounts    *AccountRepository
	settings    *SettingsRepository
	events      *EventRepository
}

// NewStore initializes the SQL store over a database connection
func NewStore(database *db.PostgresDB) *SQLStore {
	return newSQLStore(database, database.Pool)
}

func newSQLStore(database *db.PostgresDB, q DBTX) *SQLStore {
	return &SQLStore{
		database:    database,
		q:           q,
		users:       NewUserRepository(q),
		offerings:   NewOfferingRepository(q),
		licenses:    NewLicenseRepository(q),
		progress:    NewProgressRepository(q),
		credentials: NewCredentialRepository(q),
		accounts:    NewAccountRepository(q),
		settings:    NewSettingsRepository(q),
		events:      NewEventRepository(q),
	}
}

func (s *SQLStore) Users() UserStore             { return s.users }
func (s *SQLStore) Offerings() OfferingStore     { return s.offerings }
func (s *SQLStore) Licenses() LicenseStore       { return s.licenses }
func (s *SQLStore) Progress() ProgressStore      { return s.progress }
func (s *SQLStore) Credentials() CredentialStore { return s.credentials }
func (s *SQLStore) Accounts() AccountStore       { return s.accounts }
func (s *SQLStore) Settings() SettingsStore      { return s.settings }
func (s *SQLStore) Events() EventStore           { return s.events }

// ExecTx runs fn against a transaction-bound view of the store. A store that
// is already transaction-bound runs fn directly, so nested calls share the
// outer transaction.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if s.database == nil {
		return fn(s)
	}
	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(newSQLStore(nil, tx))
	})
}
