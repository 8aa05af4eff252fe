package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

func newAdminService(t *testing.T) (*AdminService, *memStore) {
	t.Helper()
	store := newMemStore()
	store.addTreasury("treasury")
	return NewAdminService(store, testConfig(), zerolog.Nop()), store
}

func TestSetDefaultPrice(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	settings, err := svc.SetDefaultPrice(ctx, models.PriceKindMint, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(75), settings.DefaultMintPrice)

	settings, err = svc.SetDefaultPrice(ctx, models.PriceKindGrowth, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(15), settings.DefaultGrowthPrice)

	_, err = svc.SetDefaultPrice(ctx, models.PriceKindMint, 0)
	assert.ErrorIs(t, err, apperrors.ErrPriceOutOfRange)

	_, err = svc.SetDefaultPrice(ctx, models.PriceKindGrowth, 2_000_000)
	assert.ErrorIs(t, err, apperrors.ErrPriceOutOfRange)
}

func TestSetFeeSplitBounds(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	settings, err := svc.SetFeeSplit(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, settings.FeeBps)

	settings, err = svc.SetFeeSplit(ctx, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 10_000, settings.FeeBps)

	_, err = svc.SetFeeSplit(ctx, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.SetFeeSplit(ctx, 10_001)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSetSettlementAddress(t *testing.T) {
	svc, store := newAdminService(t)
	ctx := context.Background()
	store.addTreasury("treasury-2")

	settings, err := svc.SetSettlementAddress(ctx, "treasury-2")
	require.NoError(t, err)
	assert.Equal(t, "treasury-2", settings.TreasuryAccountID)

	_, err = svc.SetSettlementAddress(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestPauseUnpause(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	paused, err := svc.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	_, err = svc.Pause(ctx)
	require.NoError(t, err)

	paused, err = svc.IsPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	_, err = svc.Pause(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStateConflict)

	_, err = svc.Unpause(ctx)
	require.NoError(t, err)

	_, err = svc.Unpause(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestCreditAccount(t *testing.T) {
	svc, store := newAdminService(t)
	ctx := context.Background()
	learner := store.addUser("learner@test.io", models.RoleLearner)
	store.addWallet(learner.ID, "wallet-1", 10)

	account, err := svc.CreditAccount(ctx, "wallet-1", 90)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance)
	require.Len(t, store.eventsOfKind(models.EventAccountCredited), 1)

	_, err = svc.CreditAccount(ctx, "wallet-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreditAccount(ctx, "missing", 10)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
