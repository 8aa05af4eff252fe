package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/dberrors"
)

// ProgressRepository handles unit completions and the cached per-offering
// completion counters. Unit rows are insert-only.
type ProgressRepository struct {
	db DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{
		db: db,
	}
}

// InsertUnit records a unit completion. The unique key on
// (learner, offering, unit) makes repeated completion a conflict.
func (r *ProgressRepository) InsertUnit(ctx context.Context, progress *models.UnitProgress) error {
	query := `
		INSERT INTO unit_progress (learner_id, offering_id, unit_index, completed_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		progress.LearnerID, progress.OfferingID, progress.UnitIndex, progress.CompletedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrUnitAlreadyCompleted
		}
		return fmt.Errorf("error recording unit completion: %w", err)
	}

	return nil
}

// GetUnits retrieves all completed units for a (learner, offering) pair in
// unit order
func (r *ProgressRepository) GetUnits(ctx context.Context, learnerID, offeringID int64) ([]*models.UnitProgress, error) {
	query := `
		SELECT learner_id, offering_id, unit_index, completed_at
		FROM unit_progress
		WHERE learner_id = $1 AND offering_id = $2
		ORDER BY unit_index
	`

	rows, err := r.db.Query(ctx, query, learnerID, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.UnitProgress
	for rows.Next() {
		var unit models.UnitProgress
		if err := rows.Scan(
			&unit.LearnerID,
			&unit.OfferingID,
			&unit.UnitIndex,
			&unit.CompletedAt,
		); err != nil {
			return nil, err
		}
		units = append(units, &unit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return units, nil
}

// GetCompletion retrieves the cached completion state. An absent row means no
// units have been completed yet and is returned as a zero-count record.
func (r *ProgressRepository) GetCompletion(ctx context.Context, learnerID, offeringID int64) (*models.OfferingCompletion, error) {
	query := `
		SELECT learner_id, offering_id, completed_units, completed, completed_at
		FROM offering_completions
		WHERE learner_id = $1 AND offering_id = $2
	`

	var completion models.OfferingCompletion
	err := r.db.QueryRow(ctx, query, learnerID, offeringID).Scan(
		&completion.LearnerID,
		&completion.OfferingID,
		&completion.CompletedUnits,
		&completion.Completed,
		&completion.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.OfferingCompletion{LearnerID: learnerID, OfferingID: offeringID}, nil
		}
		return nil, fmt.Errorf("error retrieving offering completion: %w", err)
	}

	return &completion, nil
}

// SaveCompletion upserts the cached completion state
func (r *ProgressRepository) SaveCompletion(ctx context.Context, completion *models.OfferingCompletion) error {
	query := `
		INSERT INTO offering_completions (learner_id, offering_id, completed_units, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (learner_id, offering_id)
		DO UPDATE SET completed_units = $3, completed = $4, completed_at = $5
	`

	_, err := r.db.Exec(ctx, query,
		completion.LearnerID,
		completion.OfferingID,
		completion.CompletedUnits,
		completion.Completed,
		completion.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving offering completion: %w", err)
	}

	return nil
}
