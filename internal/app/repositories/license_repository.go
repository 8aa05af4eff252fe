package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// LicenseRepository handles database operations for license grants. A row is
// keyed by (learner, offering); its id is the grant identifier, allocated on
// the first purchase and reused across expiry cycles. Rows are never deleted.
type LicenseRepository struct {
	db DBTX
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db DBTX) *LicenseRepository {
	return &LicenseRepository{
		db: db,
	}
}

// Get retrieves the grant for a (learner, offering) pair
func (r *LicenseRepository) Get(ctx context.Context, learnerID, offeringID int64) (*models.License, error) {
	query := `
		SELECT id, learner_id, offering_id, periods_purchased, expires_at, active, issued_at, renewed_at
		FROM licenses
		WHERE learner_id = $1 AND offering_id = $2
	`

	var license models.License
	err := r.db.QueryRow(ctx, query, learnerID, offeringID).Scan(
		&license.ID,
		&license.LearnerID,
		&license.OfferingID,
		&license.PeriodsPurchased,
		&license.ExpiresAt,
		&license.Active,
		&license.IssuedAt,
		&license.RenewedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("error retrieving license: %w", err)
	}

	return &license, nil
}

// Create inserts a new grant, allocating its identifier
func (r *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (learner_id, offering_id, periods_purchased, expires_at, active, issued_at, renewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		license.LearnerID,
		license.OfferingID,
		license.PeriodsPurchased,
		license.ExpiresAt,
		license.Active,
		license.IssuedAt,
		license.RenewedAt,
	).Scan(&license.ID)
	if err != nil {
		return fmt.Errorf("error creating license: %w", err)
	}

	return nil
}

// Reinitialize reuses an expired grant's identifier for a fresh purchase.
// The residual quantity under the old identifier is cleared first, then the
// new period count and expiry are applied.
func (r *LicenseRepository) Reinitialize(ctx context.Context, licenseID int64, periods int64, expiresAt, renewedAt time.Time) error {
	clearQuery := `UPDATE licenses SET periods_purchased = 0, active = false WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, clearQuery, licenseID)
	if err != nil {
		return fmt.Errorf("error clearing residual license state: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLicenseNotFound
	}

	query := `
		UPDATE licenses
		SET periods_purchased = $1, expires_at = $2, active = true, renewed_at = $3
		WHERE id = $4
	`
	cmdTag, err = r.db.Exec(ctx, query, periods, expiresAt, renewedAt, licenseID)
	if err != nil {
		return fmt.Errorf("error reinitializing license: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLicenseNotFound
	}

	return nil
}

// Renew extends a grant's expiry and accumulates its period count
func (r *LicenseRepository) Renew(ctx context.Context, licenseID int64, addPeriods int64, expiresAt, renewedAt time.Time) error {
	query := `
		UPDATE licenses
		SET periods_purchased = periods_purchased + $1, expires_at = $2, active = true, renewed_at = $3
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, addPeriods, expiresAt, renewedAt, licenseID)
	if err != nil {
		return fmt.Errorf("error renewing license: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLicenseNotFound
	}

	return nil
}

// Deactivate flips the active flag off
func (r *LicenseRepository) Deactivate(ctx context.Context, licenseID int64) error {
	query := `UPDATE licenses SET active = false WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, licenseID)
	if err != nil {
		return fmt.Errorf("error deactivating license: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLicenseNotFound
	}

	return nil
}
