package repositories

import (
	"context"
	"fmt"

	"github.com/mertcelik/eduledger/internal/app/models"
)

// SettingsRepository handles the single platform settings row
type SettingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get retrieves the platform settings
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	query := `
		SELECT paused, fee_bps, default_mint_price, default_growth_price, treasury_account_id
		FROM platform_settings
		WHERE id = 1
	`

	var settings models.PlatformSettings
	err := r.db.QueryRow(ctx, query).Scan(
		&settings.Paused,
		&settings.FeeBps,
		&settings.DefaultMintPrice,
		&settings.DefaultGrowthPrice,
		&settings.TreasuryAccountID,
	)

	if err != nil {
		return nil, fmt.Errorf("error retrieving platform settings: %w", err)
	}

	return &settings, nil
}

// Update overwrites the platform settings row
func (r *SettingsRepository) Update(ctx context.Context, settings *models.PlatformSettings) error {
	query := `
		UPDATE platform_settings
		SET paused = $1, fee_bps = $2, default_mint_price = $3, default_growth_price = $4, treasury_account_id = $5
		WHERE id = 1
	`

	_, err := r.db.Exec(ctx, query,
		settings.Paused,
		settings.FeeBps,
		settings.DefaultMintPrice,
		settings.DefaultGrowthPrice,
		settings.TreasuryAccountID,
	)
	if err != nil {
		return fmt.Errorf("error updating platform settings: %w", err)
	}

	return nil
}
