package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// ProgressService records unit completions gated by license validity and
// maintains the cached per-offering completion flags. Progress is monotonic:
// a completed unit stays completed even after the license lapses.
type ProgressService struct {
	store repositories.Store
	lgr   zerolog.Logger
	now   func() time.Time
}

// NewProgressService creates a new progress service instance
func NewProgressService(store repositories.Store, lgr zerolog.Logger) *ProgressService {
	return &ProgressService{
		store: store,
		lgr:   lgr,
		now:   time.Now,
	}
}

// CompleteUnit marks one unit of an offering as completed by the learner.
// Requires a currently-valid license at the moment of recording. When the
// completion count reaches the offering's unit count, the cached completion
// flag is set in the same transaction.
func (s *ProgressService) CompleteUnit(ctx context.Context, learnerID, offeringID int64, unitIndex int) (*models.OfferingCompletion, error) {
	now := s.now()
	var completion *models.OfferingCompletion

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		offering, err := store.Offerings().GetByID(ctx, offeringID)
		if err != nil {
			return err
		}

		if unitIndex < 0 || unitIndex >= offering.UnitCount {
			return fmt.Errorf("%w: unit %d of %d", apperrors.ErrUnitIndexOutOfRange, unitIndex, offering.UnitCount)
		}

		license, err := store.Licenses().Get(ctx, learnerID, offeringID)
		if err != nil || !license.IsValid(now) {
			return apperrors.ErrLicenseInvalid
		}

		if err := store.Progress().InsertUnit(ctx, &models.UnitProgress{
			LearnerID:   learnerID,
			OfferingID:  offeringID,
			UnitIndex:   unitIndex,
			CompletedAt: now,
		}); err != nil {
			return err
		}

		completion, err = store.Progress().GetCompletion(ctx, learnerID, offeringID)
		if err != nil {
			return err
		}
		completion.CompletedUnits++
		if completion.CompletedUnits == offering.UnitCount {
			completion.Completed = true
			completion.CompletedAt = &now
		}
		if err := store.Progress().SaveCompletion(ctx, completion); err != nil {
			return err
		}

		event := newEvent(models.EventUnitCompleted, now)
		event.LearnerID = int64Ptr(learnerID)
		event.OfferingID = int64Ptr(offeringID)
		event.Payload = map[string]interface{}{
			"unitIndex":      unitIndex,
			"completedUnits": completion.CompletedUnits,
			"unitCount":      offering.UnitCount,
		}
		if err := store.Events().Insert(ctx, event); err != nil {
			return err
		}

		if completion.Completed {
			done := newEvent(models.EventOfferingCompleted, now)
			done.LearnerID = int64Ptr(learnerID)
			done.OfferingID = int64Ptr(offeringID)
			done.Payload = map[string]interface{}{
				"unitCount": offering.UnitCount,
			}
			if err := store.Events().Insert(ctx, done); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().
		Int64("learnerID", learnerID).
		Int64("offeringID", offeringID).
		Int("unitIndex", unitIndex).
		Int("completedUnits", completion.CompletedUnits).
		Bool("offeringCompleted", completion.Completed).
		Msg("Unit completed")

	return completion, nil
}

// IsOfferingCompleted returns the cached completion flag
func (s *ProgressService) IsOfferingCompleted(ctx context.Context, learnerID, offeringID int64) (bool, error) {
	completion, err := s.store.Progress().GetCompletion(ctx, learnerID, offeringID)
	if err != nil {
		return false, err
	}
	return completion.Completed, nil
}

// GetOfferingProgress returns the ordered per-unit completion sequence
func (s *ProgressService) GetOfferingProgress(ctx context.Context, learnerID, offeringID int64) ([]bool, error) {
	offering, err := s.store.Offerings().GetByID(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	units, err := s.store.Progress().GetUnits(ctx, learnerID, offeringID)
	if err != nil {
		return nil, err
	}

	progress := make([]bool, offering.UnitCount)
	for _, unit := range units {
		if unit.UnitIndex >= 0 && unit.UnitIndex < len(progress) {
			progress[unit.UnitIndex] = true
		}
	}

	return progress, nil
}
