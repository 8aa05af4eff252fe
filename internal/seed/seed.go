package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/mertcelik/eduledger/internal/app/models"
	appRepos "github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/auth"
)

// CreateDefaultData sets up the rows the ledger cannot run without: the
// treasury account, the platform settings row and an administrator. It also
// seeds a demo creator with two offerings so a fresh instance is usable
// immediately. Every step is idempotent.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	accountRepo := appRepos.NewAccountRepository(dbPool)
	offeringRepo := appRepos.NewOfferingRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Treasury account and settings row --- //
	var treasuryID string
	err := dbPool.QueryRow(ctx, `SELECT id FROM accounts WHERE kind = 'TREASURY' LIMIT 1`).Scan(&treasuryID)
	if err != nil {
		treasuryID = uuid.New().String()
		if err := accountRepo.Create(ctx, &appModels.Account{
			ID:   treasuryID,
			Kind: appModels.AccountTreasury,
		}); err != nil {
			lgr.Error().Err(err).Msg("Error creating treasury account")
			return err
		}
	}

	_, err = dbPool.Exec(ctx, `
		INSERT INTO platform_settings (id, paused, fee_bps, default_mint_price, default_growth_price, treasury_account_id)
		VALUES (1, false, $1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, cfg.Ledger.FeeBps, cfg.Ledger.DefaultMintPrice, cfg.Ledger.DefaultGrowthPrice, treasuryID)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating platform settings row")
		return err
	}

	// --- Administrator --- //
	if _, err := createUserWithWallet(ctx, userRepo, accountRepo, "admin@eduledger.io", "admin-change-me", "Platform Admin", appModels.RoleAdmin, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	// --- Demo creator and offerings --- //
	creatorID, err := createUserWithWallet(ctx, userRepo, accountRepo, "creator@eduledger.io", "creator-change-me", "Demo Creator", appModels.RoleCreator, lgr)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if creatorID > 0 {
		offerings, err := offeringRepo.GetAll(ctx)
		if err != nil {
			finalErr = errors.Join(finalErr, err)
		} else if len(offerings) == 0 {
			demo := []*appModels.Offering{
				{CreatorID: creatorID, Title: "Foundations of Distributed Systems", PricePerPeriod: 40, Active: true, UnitCount: 3},
				{CreatorID: creatorID, Title: "Applied Cryptography", PricePerPeriod: 60, Active: true, UnitCount: 2},
			}
			for _, offering := range demo {
				if err := offeringRepo.Create(ctx, offering); err != nil {
					lgr.Error().Err(err).Str("title", offering.Title).Msg("Error creating demo offering")
					finalErr = errors.Join(finalErr, err)
				}
			}
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check complete.")
	}
	return finalErr
}

// createUserWithWallet inserts a user and their wallet account, returning the
// user ID of the existing row when the email is already taken.
func createUserWithWallet(ctx context.Context, userRepo *appRepos.UserRepository, accountRepo *appRepos.AccountRepository, email, password, fullName string, role appModels.RoleType, lgr zerolog.Logger) (int64, error) {
	existing, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Str("email", email).Msg("Error checking for existing user")
		return 0, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	user := &appModels.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		RoleType:     role,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating default user")
		return 0, err
	}

	if err := accountRepo.Create(ctx, &appModels.Account{
		ID:          uuid.New().String(),
		OwnerUserID: &user.ID,
		Kind:        appModels.AccountWallet,
	}); err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating wallet for default user")
		return user.ID, err
	}

	return user.ID, nil
}
