package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/dberrors"
)

// CredentialRepository handles credentials, their append-only offering
// entries, creator price overrides and the payment-commitment replay guard.
type CredentialRepository struct {
	db DBTX
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db DBTX) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

const credentialColumns = `id, learner_id, display_name, valid, content_ref, issued_at, last_updated, last_commitment, revoked_reason`

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var credential models.Credential
	err := row.Scan(
		&credential.ID,
		&credential.LearnerID,
		&credential.DisplayName,
		&credential.Valid,
		&credential.ContentRef,
		&credential.IssuedAt,
		&credential.LastUpdated,
		&credential.LastCommitment,
		&credential.RevokedReason,
	)
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

// GetByLearner retrieves a learner's sole credential
func (r *CredentialRepository) GetByLearner(ctx context.Context, learnerID int64) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE learner_id = $1`

	credential, err := scanCredential(r.db.QueryRow(ctx, query, learnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("error retrieving credential by learner: %w", err)
	}

	return credential, nil
}

// GetByID retrieves a credential by its identifier
func (r *CredentialRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`

	credential, err := scanCredential(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("error retrieving credential: %w", err)
	}

	return credential, nil
}

// Create allocates a new credential identifier for a learner. The unique key
// on learner_id enforces the one-credential invariant at the storage level
// as well.
func (r *CredentialRepository) Create(ctx context.Context, credential *models.Credential) error {
	query := `
		INSERT INTO credentials (learner_id, display_name, valid, content_ref, issued_at, last_updated, last_commitment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		credential.LearnerID,
		credential.DisplayName,
		credential.Valid,
		credential.ContentRef,
		credential.IssuedAt,
		credential.LastUpdated,
		credential.LastCommitment,
	).Scan(&credential.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewStateConflictError("learner already holds a credential")
		}
		return fmt.Errorf("error creating credential: %w", err)
	}

	return nil
}

// Update refreshes a credential's mutable fields
func (r *CredentialRepository) Update(ctx context.Context, credential *models.Credential) error {
	query := `
		UPDATE credentials
		SET display_name = $1, content_ref = $2, last_updated = $3, last_commitment = $4
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		credential.DisplayName,
		credential.ContentRef,
		credential.LastUpdated,
		credential.LastCommitment,
		credential.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating credential: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCredentialNotFound
	}

	return nil
}

// AppendEntry appends one offering to a credential's cumulative list
func (r *CredentialRepository) AppendEntry(ctx context.Context, entry *models.CredentialEntry) error {
	query := `
		INSERT INTO credential_offerings (credential_id, offering_id, position, earned_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		entry.CredentialID, entry.OfferingID, entry.Position, entry.EarnedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrOfferingAlreadyEarned
		}
		return fmt.Errorf("error appending credential entry: %w", err)
	}

	return nil
}

// GetEntries retrieves a credential's offering entries in append order
func (r *CredentialRepository) GetEntries(ctx context.Context, credentialID int64) ([]*models.CredentialEntry, error) {
	query := `
		SELECT credential_id, offering_id, position, earned_at
		FROM credential_offerings
		WHERE credential_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, credentialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CredentialEntry
	for rows.Next() {
		var entry models.CredentialEntry
		if err := rows.Scan(
			&entry.CredentialID,
			&entry.OfferingID,
			&entry.Position,
			&entry.EarnedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// SetValidity flips the credential validity flag; the record itself persists
// for audit
func (r *CredentialRepository) SetValidity(ctx context.Context, id int64, valid bool, reason *string) error {
	query := `UPDATE credentials SET valid = $1, revoked_reason = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, valid, reason, id)
	if err != nil {
		return fmt.Errorf("error setting credential validity: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCredentialNotFound
	}

	return nil
}

// ConsumeCommitment permanently burns a payment commitment. Commitments are
// globally unique; a repeat insert is the replay signal.
func (r *CredentialRepository) ConsumeCommitment(ctx context.Context, commitment string, learnerID int64, at time.Time) error {
	query := `
		INSERT INTO payment_commitments (commitment, learner_id, consumed_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, commitment, learnerID, at)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCommitmentAlreadyUsed
		}
		return fmt.Errorf("error consuming payment commitment: %w", err)
	}

	return nil
}

// GetPriceOverride retrieves a creator's price override, or nil when the
// ledger default applies
func (r *CredentialRepository) GetPriceOverride(ctx context.Context, offeringID int64, kind models.PriceKind) (*models.CredentialPrice, error) {
	query := `
		SELECT offering_id, kind, price
		FROM credential_prices
		WHERE offering_id = $1 AND kind = $2
	`

	var price models.CredentialPrice
	err := r.db.QueryRow(ctx, query, offeringID, kind).Scan(
		&price.OfferingID,
		&price.Kind,
		&price.Price,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving price override: %w", err)
	}

	return &price, nil
}

// UpsertPriceOverride sets a creator's price override for one price kind
func (r *CredentialRepository) UpsertPriceOverride(ctx context.Context, price *models.CredentialPrice) error {
	query := `
		INSERT INTO credential_prices (offering_id, kind, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (offering_id, kind)
		DO UPDATE SET price = $3
	`

	_, err := r.db.Exec(ctx, query, price.OfferingID, price.Kind, price.Price)
	if err != nil {
		return fmt.Errorf("error upserting price override: %w", err)
	}

	return nil
}
