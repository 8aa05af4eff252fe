package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ledger.PeriodLength = "720h"
	cfg.Ledger.MinPeriods = 1
	cfg.Ledger.MaxPeriods = 12
	cfg.Ledger.DefaultMintPrice = 50
	cfg.Ledger.DefaultGrowthPrice = 10
	cfg.Ledger.MaxCredentialPrice = 1_000_000
	cfg.Ledger.FeeBps = 2000
	cfg.Ledger.MaxDisplayNameLength = 128
	return cfg
}

type licenseFixture struct {
	store    *memStore
	service  *LicenseService
	learner  *models.User
	creator  *models.User
	offering *models.Offering
	now      time.Time
}

func newLicenseFixture(t *testing.T) *licenseFixture {
	t.Helper()

	store := newMemStore()
	creator := store.addUser("creator@example.com", models.RoleCreator)
	learner := store.addUser("learner@example.com", models.RoleLearner)
	store.addWallet(creator.ID, "wallet-creator", 0)
	store.addWallet(learner.ID, "wallet-learner", 1_000)
	store.addTreasury("treasury")
	offering := store.addOffering(creator.ID, 10, 3)

	service := NewLicenseService(store, testConfig(), zerolog.Nop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	return &licenseFixture{
		store:    store,
		service:  service,
		learner:  learner,
		creator:  creator,
		offering: offering,
		now:      now,
	}
}

func (f *licenseFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	now := f.now
	f.service.now = func() time.Time { return now }
}

const period = 720 * time.Hour

func TestPurchaseGrantsTimeBoundAccess(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	license, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 3, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(3), license.PeriodsPurchased)
	assert.True(t, license.Active)
	assert.Equal(t, f.now.Add(3*period).Unix(), license.ExpiresAt.Unix())

	valid, err := f.service.IsValid(ctx, f.learner.ID, f.offering.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	// Fee split: platform floor(30*2000/10000)=6, creator the remainder.
	assert.Equal(t, int64(1_000-30), f.store.balance("wallet-learner"))
	assert.Equal(t, int64(24), f.store.balance("wallet-creator"))
	assert.Equal(t, int64(6), f.store.balance("treasury"))

	require.Len(t, f.store.eventsOfKind(models.EventLicenseGranted), 1)
}

func TestPurchaseExcessPaymentNotTaken(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.service.Purchase(context.Background(), f.learner.ID, f.offering.ID, 2, 500)
	require.NoError(t, err)

	// Cost is 20; the rest of the 500 authorization is never debited.
	assert.Equal(t, int64(1_000-20), f.store.balance("wallet-learner"))
}

func TestPurchaseRejectsInsufficientPayment(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 3, 29)
	require.ErrorIs(t, err, apperrors.ErrInsufficientPayment)

	// Nothing moved, nothing granted.
	assert.Equal(t, int64(1_000), f.store.balance("wallet-learner"))
	_, err = f.service.GetLicense(ctx, f.learner.ID, f.offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrLicenseNotFound)
}

func TestPurchaseRejectsPeriodsOutOfRange(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 0, 100)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriods)

	_, err = f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 13, 1_000)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriods)
}

func TestPurchaseRejectsInactiveOffering(t *testing.T) {
	f := newLicenseFixture(t)
	f.store.data.offerings[f.offering.ID].Active = false

	_, err := f.service.Purchase(context.Background(), f.learner.ID, f.offering.ID, 1, 100)
	assert.ErrorIs(t, err, apperrors.ErrOfferingInactive)
}

func TestPurchaseRejectsUnexpiredLicense(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 3, 30)
	require.NoError(t, err)

	_, err = f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrLicenseNotExpired)
}

func TestPurchaseReusesIdentifierAfterExpiry(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	first, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 1, 10)
	require.NoError(t, err)

	f.advance(2 * period)

	second, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 2, 20)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(2), second.PeriodsPurchased)
	assert.Equal(t, f.now.Add(2*period).Unix(), second.ExpiresAt.Unix())
	assert.True(t, second.Active)
}

func TestPurchaseOverflowLeavesStateUntouched(t *testing.T) {
	f := newLicenseFixture(t)
	huge := f.store.addOffering(f.creator.ID, math.MaxInt64/2, 3)

	_, err := f.service.Purchase(context.Background(), f.learner.ID, huge.ID, 3, math.MaxInt64)
	require.ErrorIs(t, err, apperrors.ErrArithmeticOverflow)

	assert.Equal(t, int64(1_000), f.store.balance("wallet-learner"))
	assert.Empty(t, f.store.eventsOfKind(models.EventLicenseGranted))
}

func TestRenewExtendsFromCurrentExpiry(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	first, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 3, 30)
	require.NoError(t, err)

	f.advance(period) // still valid for two more periods

	renewed, err := f.service.Renew(ctx, f.learner.ID, f.offering.ID, 2, 20)
	require.NoError(t, err)

	// Remaining validity is kept: new expiry counts from the old one.
	assert.Equal(t, first.ExpiresAt.Add(2*period).Unix(), renewed.ExpiresAt.Unix())
	assert.Equal(t, int64(5), renewed.PeriodsPurchased)
}

func TestRenewAfterLapseCountsFromNow(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 1, 10)
	require.NoError(t, err)

	f.advance(5 * period)

	renewed, err := f.service.Renew(ctx, f.learner.ID, f.offering.ID, 2, 20)
	require.NoError(t, err)

	assert.Equal(t, f.now.Add(2*period).Unix(), renewed.ExpiresAt.Unix())
	assert.Equal(t, int64(3), renewed.PeriodsPurchased)
	assert.True(t, renewed.Active)
}

func TestRenewRequiresExistingLicense(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.service.Renew(context.Background(), f.learner.ID, f.offering.ID, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrLicenseNotFound)
}

func TestIsValidUnknownPairReportsFalse(t *testing.T) {
	f := newLicenseFixture(t)

	valid, err := f.service.IsValid(context.Background(), f.learner.ID, 999)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestMarkExpiredIsIdempotent(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 1, 10)
	require.NoError(t, err)

	// Still running: no-op.
	license, err := f.service.MarkExpired(ctx, f.learner.ID, f.offering.ID)
	require.NoError(t, err)
	assert.True(t, license.Active)
	assert.Empty(t, f.store.eventsOfKind(models.EventLicenseExpired))

	f.advance(2 * period)

	license, err = f.service.MarkExpired(ctx, f.learner.ID, f.offering.ID)
	require.NoError(t, err)
	assert.False(t, license.Active)
	assert.Len(t, f.store.eventsOfKind(models.EventLicenseExpired), 1)

	// Second call changes nothing and emits nothing.
	license, err = f.service.MarkExpired(ctx, f.learner.ID, f.offering.ID)
	require.NoError(t, err)
	assert.False(t, license.Active)
	assert.Len(t, f.store.eventsOfKind(models.EventLicenseExpired), 1)
}

func TestPurchaseInsufficientBalanceRollsBack(t *testing.T) {
	f := newLicenseFixture(t)
	f.store.data.accounts["wallet-learner"].Balance = 5

	_, err := f.service.Purchase(context.Background(), f.learner.ID, f.offering.ID, 1, 10)
	require.ErrorIs(t, err, apperrors.ErrTransferFailed)

	// The grant insert rolled back with the failed settlement.
	_, err = f.service.GetLicense(context.Background(), f.learner.ID, f.offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrLicenseNotFound)
	assert.Equal(t, int64(5), f.store.balance("wallet-learner"))
}
