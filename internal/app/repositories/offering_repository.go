package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// OfferingRepository reads the catalog. The ledger core never updates
// offerings; Create exists for seeding and external authoring tools.
type OfferingRepository struct {
	db DBTX
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db DBTX) *OfferingRepository {
	return &OfferingRepository{
		db: db,
	}
}

// GetByID retrieves an offering descriptor by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	query := `
		SELECT id, creator_id, title, price_per_period, active, unit_count, created_at
		FROM offerings
		WHERE id = $1
	`

	var offering models.Offering
	err := r.db.QueryRow(ctx, query, id).Scan(
		&offering.ID,
		&offering.CreatorID,
		&offering.Title,
		&offering.PricePerPeriod,
		&offering.Active,
		&offering.UnitCount,
		&offering.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}

	return &offering, nil
}

// GetAll retrieves all offerings
func (r *OfferingRepository) GetAll(ctx context.Context) ([]*models.Offering, error) {
	query := `
		SELECT id, creator_id, title, price_per_period, active, unit_count, created_at
		FROM offerings
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerings []*models.Offering
	for rows.Next() {
		var offering models.Offering
		if err := rows.Scan(
			&offering.ID,
			&offering.CreatorID,
			&offering.Title,
			&offering.PricePerPeriod,
			&offering.Active,
			&offering.UnitCount,
			&offering.CreatedAt,
		); err != nil {
			return nil, err
		}
		offerings = append(offerings, &offering)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offerings, nil
}

// Create inserts a new offering descriptor
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	query := `
		INSERT INTO offerings (creator_id, title, price_per_period, active, unit_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		offering.CreatorID, offering.Title, offering.PricePerPeriod, offering.Active, offering.UnitCount).
		Scan(&offering.ID, &offering.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating offering: %w", err)
	}

	return nil
}
