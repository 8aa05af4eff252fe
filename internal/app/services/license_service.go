package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/helpers"
)

// LicenseService issues and renews time-bound access grants and settles their
// payment. Every state-changing method runs as one store transaction: either
// the grant mutation, the settlement and the event all commit, or none do.
type LicenseService struct {
	store repositories.Store
	cfg   *config.Config
	lgr   zerolog.Logger
	now   func() time.Time
}

// NewLicenseService creates a new license service instance
func NewLicenseService(store repositories.Store, cfg *config.Config, lgr zerolog.Logger) *LicenseService {
	return &LicenseService{
		store: store,
		cfg:   cfg,
		lgr:   lgr,
		now:   time.Now,
	}
}

// validatePeriods bounds the period count of a single call. Cumulative
// renewals are unbounded; only the per-call count is checked.
func (s *LicenseService) validatePeriods(periods int) error {
	if periods < s.cfg.Ledger.MinPeriods || periods > s.cfg.Ledger.MaxPeriods {
		return fmt.Errorf("%w: periods must be within [%d, %d]",
			apperrors.ErrInvalidPeriods, s.cfg.Ledger.MinPeriods, s.cfg.Ledger.MaxPeriods)
	}
	return nil
}

// licenseCost computes price x periods with overflow rejection before any
// comparison or transfer happens.
func licenseCost(pricePerPeriod int64, periods int) (int64, error) {
	return helpers.CheckedMul(pricePerPeriod, int64(periods))
}

// expiryFrom computes base + periods x periodLength in whole seconds, with
// the multiplication and the addition both overflow-checked.
func (s *LicenseService) expiryFrom(base time.Time, periods int) (time.Time, error) {
	periodSeconds := int64(s.cfg.PeriodLength() / time.Second)
	addSeconds, err := helpers.CheckedMul(periodSeconds, int64(periods))
	if err != nil {
		return time.Time{}, err
	}
	expiryUnix, err := helpers.CheckedAdd(base.Unix(), addSeconds)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(expiryUnix, 0).UTC(), nil
}

// Purchase grants a learner time-bound access to an offering. The grant
// identifier is allocated on the first purchase for the pair and reused after
// expiry; a purchase against an unexpired grant is rejected.
func (s *LicenseService) Purchase(ctx context.Context, learnerID, offeringID int64, periods int, paymentOffered int64) (*models.License, error) {
	if err := s.validatePeriods(periods); err != nil {
		return nil, err
	}

	now := s.now()
	var license *models.License

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		offering, err := store.Offerings().GetByID(ctx, offeringID)
		if err != nil {
			return err
		}
		if !offering.Active {
			return apperrors.ErrOfferingInactive
		}

		cost, err := licenseCost(offering.PricePerPeriod, periods)
		if err != nil {
			return err
		}
		if paymentOffered < cost {
			return fmt.Errorf("%w: need %d, offered %d", apperrors.ErrInsufficientPayment, cost, paymentOffered)
		}

		expiresAt, err := s.expiryFrom(now, periods)
		if err != nil {
			return err
		}

		existing, err := store.Licenses().Get(ctx, learnerID, offeringID)
		switch {
		case err == nil:
			// Identifier slot exists; only an expired grant may be reused.
			if existing.ExpiresAt.After(now) {
				return apperrors.ErrLicenseNotExpired
			}
			if err := store.Licenses().Reinitialize(ctx, existing.ID, int64(periods), expiresAt, now); err != nil {
				return err
			}
			license = existing
			license.PeriodsPurchased = int64(periods)
			license.ExpiresAt = expiresAt
			license.Active = true
			license.RenewedAt = now
		case errors.Is(err, apperrors.ErrLicenseNotFound):
			license = &models.License{
				LearnerID:        learnerID,
				OfferingID:       offeringID,
				PeriodsPurchased: int64(periods),
				ExpiresAt:        expiresAt,
				Active:           true,
				IssuedAt:         now,
				RenewedAt:        now,
			}
			if err := store.Licenses().Create(ctx, license); err != nil {
				return err
			}
		default:
			return err
		}

		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}
		breakdown, err := settle(ctx, store, learnerID, offering.CreatorID, cost, settings.FeeBps, settings.TreasuryAccountID)
		if err != nil {
			return err
		}

		event := newEvent(models.EventLicenseGranted, now)
		event.LearnerID = int64Ptr(learnerID)
		event.OfferingID = int64Ptr(offeringID)
		event.LicenseID = int64Ptr(license.ID)
		event.Amount = int64Ptr(cost)
		event.Payload = map[string]interface{}{
			"periods":       periods,
			"expiresAt":     expiresAt,
			"creatorShare":  breakdown.CreatorShare,
			"platformShare": breakdown.PlatformShare,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().
		Int64("learnerID", learnerID).
		Int64("offeringID", offeringID).
		Int64("licenseID", license.ID).
		Int("periods", periods).
		Time("expiresAt", license.ExpiresAt).
		Msg("License granted")

	return license, nil
}

// Renew extends an existing grant. The new expiry counts from the current
// expiry when the grant is still running, from now when it already lapsed.
func (s *LicenseService) Renew(ctx context.Context, learnerID, offeringID int64, periods int, paymentOffered int64) (*models.License, error) {
	if err := s.validatePeriods(periods); err != nil {
		return nil, err
	}

	now := s.now()
	var license *models.License

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		offering, err := store.Offerings().GetByID(ctx, offeringID)
		if err != nil {
			return err
		}
		if !offering.Active {
			return apperrors.ErrOfferingInactive
		}

		cost, err := licenseCost(offering.PricePerPeriod, periods)
		if err != nil {
			return err
		}
		if paymentOffered < cost {
			return fmt.Errorf("%w: need %d, offered %d", apperrors.ErrInsufficientPayment, cost, paymentOffered)
		}

		existing, err := store.Licenses().Get(ctx, learnerID, offeringID)
		if err != nil {
			return err
		}

		base := now
		if existing.ExpiresAt.After(now) {
			base = existing.ExpiresAt
		}
		expiresAt, err := s.expiryFrom(base, periods)
		if err != nil {
			return err
		}

		if err := store.Licenses().Renew(ctx, existing.ID, int64(periods), expiresAt, now); err != nil {
			return err
		}
		license = existing
		license.PeriodsPurchased += int64(periods)
		license.ExpiresAt = expiresAt
		license.Active = true
		license.RenewedAt = now

		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}
		breakdown, err := settle(ctx, store, learnerID, offering.CreatorID, cost, settings.FeeBps, settings.TreasuryAccountID)
		if err != nil {
			return err
		}

		event := newEvent(models.EventLicenseRenewed, now)
		event.LearnerID = int64Ptr(learnerID)
		event.OfferingID = int64Ptr(offeringID)
		event.LicenseID = int64Ptr(license.ID)
		event.Amount = int64Ptr(cost)
		event.Payload = map[string]interface{}{
			"periods":       periods,
			"expiresAt":     expiresAt,
			"creatorShare":  breakdown.CreatorShare,
			"platformShare": breakdown.PlatformShare,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().
		Int64("learnerID", learnerID).
		Int64("offeringID", offeringID).
		Int64("licenseID", license.ID).
		Int("periods", periods).
		Time("expiresAt", license.ExpiresAt).
		Msg("License renewed")

	return license, nil
}

// IsValid reports whether the learner currently holds access to the offering
func (s *LicenseService) IsValid(ctx context.Context, learnerID, offeringID int64) (bool, error) {
	license, err := s.store.Licenses().Get(ctx, learnerID, offeringID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLicenseNotFound) {
			return false, nil
		}
		return false, err
	}
	return license.IsValid(s.now()), nil
}

// GetLicense retrieves the grant for a (learner, offering) pair
func (s *LicenseService) GetLicense(ctx context.Context, learnerID, offeringID int64) (*models.License, error) {
	return s.store.Licenses().Get(ctx, learnerID, offeringID)
}

// MarkExpired flips the active flag of a lapsed grant and emits an
// observability record. Idempotent: a second call, or a call on a running
// grant, changes nothing.
func (s *LicenseService) MarkExpired(ctx context.Context, learnerID, offeringID int64) (*models.License, error) {
	now := s.now()
	var license *models.License

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		existing, err := store.Licenses().Get(ctx, learnerID, offeringID)
		if err != nil {
			return err
		}
		license = existing

		if existing.ExpiresAt.After(now) || !existing.Active {
			// Still running, or already marked. No-op.
			return nil
		}

		if err := store.Licenses().Deactivate(ctx, existing.ID); err != nil {
			return err
		}
		license.Active = false

		event := newEvent(models.EventLicenseExpired, now)
		event.LearnerID = int64Ptr(learnerID)
		event.OfferingID = int64Ptr(offeringID)
		event.LicenseID = int64Ptr(existing.ID)
		event.Payload = map[string]interface{}{
			"expiredAt": existing.ExpiresAt,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return license, nil
}
