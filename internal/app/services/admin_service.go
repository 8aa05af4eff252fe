package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/payment"
)

// AdminService manages the ledger-wide settings row and the emergency pause
// switch. Authorization is enforced at the route level; these methods assume
// an administrator caller.
type AdminService struct {
	store repositories.Store
	cfg   *config.Config
	lgr   zerolog.Logger
	now   func() time.Time
}

// NewAdminService creates a new admin service instance
func NewAdminService(store repositories.Store, cfg *config.Config, lgr zerolog.Logger) *AdminService {
	return &AdminService{
		store: store,
		cfg:   cfg,
		lgr:   lgr,
		now:   time.Now,
	}
}

func (s *AdminService) updateSettings(ctx context.Context, setting string, mutate func(*models.PlatformSettings) error) (*models.PlatformSettings, error) {
	var settings *models.PlatformSettings

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		current, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}
		if err := store.Settings().Update(ctx, current); err != nil {
			return err
		}
		settings = current

		event := newEvent(models.EventSettingsChanged, s.now())
		event.Payload = map[string]interface{}{
			"setting": setting,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().Str("setting", setting).Msg("Ledger settings updated")
	return settings, nil
}

// SetDefaultPrice changes the ledger-wide default for one credential price kind
func (s *AdminService) SetDefaultPrice(ctx context.Context, kind models.PriceKind, price int64) (*models.PlatformSettings, error) {
	if price <= 0 || price > s.cfg.Ledger.MaxCredentialPrice {
		return nil, fmt.Errorf("%w: must be within (0, %d]", apperrors.ErrPriceOutOfRange, s.cfg.Ledger.MaxCredentialPrice)
	}

	return s.updateSettings(ctx, "defaultPrice", func(settings *models.PlatformSettings) error {
		switch kind {
		case models.PriceKindMint:
			settings.DefaultMintPrice = price
		case models.PriceKindGrowth:
			settings.DefaultGrowthPrice = price
		default:
			return apperrors.NewValidationError("unknown price kind")
		}
		return nil
	})
}

// SetFeeSplit changes the platform share in basis points
func (s *AdminService) SetFeeSplit(ctx context.Context, bps int) (*models.PlatformSettings, error) {
	if bps < 0 || bps > payment.BpsDenominator {
		return nil, apperrors.NewValidationError(fmt.Sprintf("fee split must be within [0, %d] basis points", payment.BpsDenominator))
	}

	return s.updateSettings(ctx, "feeBps", func(settings *models.PlatformSettings) error {
		settings.FeeBps = bps
		return nil
	})
}

// SetSettlementAddress points the platform share at a different treasury account
func (s *AdminService) SetSettlementAddress(ctx context.Context, accountID string) (*models.PlatformSettings, error) {
	if _, err := s.store.Accounts().GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return s.updateSettings(ctx, "treasuryAccount", func(settings *models.PlatformSettings) error {
		settings.TreasuryAccountID = accountID
		return nil
	})
}

// Pause halts all state-changing ledger operations until Unpause
func (s *AdminService) Pause(ctx context.Context) (*models.PlatformSettings, error) {
	return s.updateSettings(ctx, "paused", func(settings *models.PlatformSettings) error {
		if settings.Paused {
			return apperrors.NewStateConflictError("ledger is already paused")
		}
		settings.Paused = true
		return nil
	})
}

// Unpause resumes state-changing ledger operations
func (s *AdminService) Unpause(ctx context.Context) (*models.PlatformSettings, error) {
	return s.updateSettings(ctx, "paused", func(settings *models.PlatformSettings) error {
		if !settings.Paused {
			return apperrors.NewStateConflictError("ledger is not paused")
		}
		settings.Paused = false
		return nil
	})
}

// IsPaused reports the pause flag for the write-path middleware
func (s *AdminService) IsPaused(ctx context.Context) (bool, error) {
	settings, err := s.store.Settings().Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.Paused, nil
}

// GetSettings returns the current ledger settings row
func (s *AdminService) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	return s.store.Settings().Get(ctx)
}

// CreditAccount tops up a wallet out of thin air. This is the funding
// entry point for the native unit; there is no external on-ramp.
func (s *AdminService) CreditAccount(ctx context.Context, accountID string, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("credit amount must be positive")
	}

	var account *models.Account
	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		if _, err := store.Accounts().GetByID(ctx, accountID); err != nil {
			return err
		}
		if err := store.Accounts().AddBalance(ctx, accountID, amount); err != nil {
			return err
		}

		updated, err := store.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		account = updated

		event := newEvent(models.EventAccountCredited, s.now())
		event.Amount = int64Ptr(amount)
		event.Payload = map[string]interface{}{
			"accountID": accountID,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().Str("accountID", accountID).Int64("amount", amount).Msg("Account credited")
	return account, nil
}
