package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appAuth "github.com/mertcelik/eduledger/internal/app/auth"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

type credentialFixture struct {
	*progressFixture
	credentials *CredentialService
	offeringB   *models.Offering
}

// newCredentialFixture builds the full three-service stack over one shared
// store: offering A (3 units) from the license fixture plus offering B
// (2 units), both by the same creator.
func newCredentialFixture(t *testing.T) *credentialFixture {
	t.Helper()

	base := newProgressFixture(t)
	offeringB := base.store.addOffering(base.creator.ID, 20, 2)

	credentials := NewCredentialService(base.store, appAuth.NewAuthorizationService(base.store), testConfig(), zerolog.Nop())
	credentials.now = base.service.now

	return &credentialFixture{
		progressFixture: base,
		credentials:     credentials,
		offeringB:       offeringB,
	}
}

// completeOffering purchases access and completes every unit.
func (f *credentialFixture) completeOffering(t *testing.T, offering *models.Offering) {
	t.Helper()
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, offering.ID, 1, 1_000)
	require.NoError(t, err)
	for idx := 0; idx < offering.UnitCount; idx++ {
		_, err := f.progress.CompleteUnit(ctx, f.learner.ID, offering.ID, idx)
		require.NoError(t, err)
	}
}

func TestMintRequiresCompletedOffering(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 1, 1_000)
	require.NoError(t, err)
	_, err = f.progress.CompleteUnit(ctx, f.learner.ID, f.offering.ID, 0)
	require.NoError(t, err)

	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 100)
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotCompleted)
}

func TestMintRequiresLicenseHistory(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	// Completion rows without a license row cannot happen through the
	// service; simulate a corrupt state to check the gate independently.
	f.store.data.completions[pairKey{f.learner.ID, f.offering.ID}] = &models.OfferingCompletion{
		LearnerID:  f.learner.ID,
		OfferingID: f.offering.ID,
		Completed:  true,
	}

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 100)
	assert.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestMintIssuesCredential(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	balanceBefore := f.store.balance("wallet-learner")

	credential, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada Lovelace", "ref-1", "c-1", 50)
	require.NoError(t, err)

	assert.True(t, credential.Valid)
	assert.Equal(t, "Ada Lovelace", credential.DisplayName)
	assert.Equal(t, "ref-1", credential.ContentRef)
	assert.Equal(t, []int64{f.offering.ID}, credential.OfferingIDs)

	// Default mint price 50 debited; excess never taken.
	assert.Equal(t, balanceBefore-50, f.store.balance("wallet-learner"))
	require.Len(t, f.store.eventsOfKind(models.EventCredentialIssued), 1)
}

func TestMintAfterLicenseExpiryStillAllowed(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	f.advanceBoth(2 * period)
	f.credentials.now = f.service.now

	credential, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 100)
	require.NoError(t, err)
	assert.True(t, credential.Valid)
}

func TestMintValidatesDisplayName(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "  ", "ref-1", "c-1", 100)
	assert.ErrorIs(t, err, apperrors.ErrDisplayNameInvalid)

	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, strings.Repeat("x", 129), "ref-1", "c-2", 100)
	assert.ErrorIs(t, err, apperrors.ErrDisplayNameInvalid)
}

func TestMintRejectsEmptyCommitment(t *testing.T) {
	f := newCredentialFixture(t)
	f.completeOffering(t, f.offering)

	_, err := f.credentials.MintOrGrow(context.Background(), f.learner.ID, f.offering.ID, "Ada", "ref-1", "  ", 100)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCommitment)
}

func TestMintRejectsInsufficientPayment(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	balanceBefore := f.store.balance("wallet-learner")

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 49)
	require.ErrorIs(t, err, apperrors.ErrInsufficientPayment)

	assert.Equal(t, balanceBefore, f.store.balance("wallet-learner"))

	// The rejected call's commitment burn rolled back with it.
	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	assert.NoError(t, err)
}

func TestGrowAppendsOffering(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)
	f.completeOffering(t, f.offeringB)

	minted, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.NoError(t, err)

	balanceBefore := f.store.balance("wallet-learner")

	grown, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offeringB.ID, "", "ref-2", "c-2", 10)
	require.NoError(t, err)

	assert.Equal(t, minted.ID, grown.ID)
	assert.Equal(t, []int64{f.offering.ID, f.offeringB.ID}, grown.OfferingIDs)
	assert.Equal(t, "ref-2", grown.ContentRef)
	// Growth price 10, not the mint price.
	assert.Equal(t, balanceBefore-10, f.store.balance("wallet-learner"))
	require.Len(t, f.store.eventsOfKind(models.EventCredentialGrown), 1)
}

func TestGrowRejectsDuplicateOffering(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.NoError(t, err)

	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-2", "c-2", 50)
	assert.ErrorIs(t, err, apperrors.ErrOfferingAlreadyEarned)
}

func TestCommitmentReplayRejected(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)
	f.completeOffering(t, f.offeringB)

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.NoError(t, err)

	balanceBefore := f.store.balance("wallet-learner")

	// Same commitment against a different offering: still a replay.
	grown, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offeringB.ID, "", "ref-2", "c-1", 50)
	require.ErrorIs(t, err, apperrors.ErrCommitmentAlreadyUsed)
	assert.Nil(t, grown)

	assert.Equal(t, balanceBefore, f.store.balance("wallet-learner"))
}

func TestPriceOverrideApplies(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	require.NoError(t, f.credentials.SetPrice(ctx, f.creator.ID, f.offering.ID, models.PriceKindMint, 80))

	_, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.ErrorIs(t, err, apperrors.ErrInsufficientPayment)

	balanceBefore := f.store.balance("wallet-learner")
	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-2", 80)
	require.NoError(t, err)
	assert.Equal(t, balanceBefore-80, f.store.balance("wallet-learner"))
}

func TestSetPriceCreatorOnly(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	err := f.credentials.SetPrice(ctx, f.learner.ID, f.offering.ID, models.PriceKindMint, 80)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = f.credentials.SetPrice(ctx, f.creator.ID, f.offering.ID, models.PriceKindMint, 0)
	assert.ErrorIs(t, err, apperrors.ErrPriceOutOfRange)

	err = f.credentials.SetPrice(ctx, f.creator.ID, f.offering.ID, models.PriceKindGrowth, 2_000_000)
	assert.ErrorIs(t, err, apperrors.ErrPriceOutOfRange)
}

func TestUpdateContentRefOwnerOnly(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	credential, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.NoError(t, err)

	_, err = f.credentials.UpdateContentRef(ctx, f.creator.ID, credential.ID, "ref-2", "c-2")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := f.credentials.UpdateContentRef(ctx, f.learner.ID, credential.ID, "ref-2", "c-3")
	require.NoError(t, err)
	assert.Equal(t, "ref-2", updated.ContentRef)

	// Commitment replay applies here too.
	_, err = f.credentials.UpdateContentRef(ctx, f.learner.ID, credential.ID, "ref-3", "c-3")
	assert.ErrorIs(t, err, apperrors.ErrCommitmentAlreadyUsed)
}

func TestRevokeInvalidatesCredential(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)

	credential, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	require.NoError(t, err)

	valid, err := f.credentials.Verify(ctx, credential.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, f.credentials.Revoke(ctx, credential.ID, "fraud"))

	valid, err = f.credentials.Verify(ctx, credential.ID)
	require.NoError(t, err)
	assert.False(t, valid)

	// The record and its history stay queryable.
	offeringIDs, err := f.credentials.GetCumulativeOfferings(ctx, credential.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.offering.ID}, offeringIDs)
}

func TestVerifyUnknownCredential(t *testing.T) {
	f := newCredentialFixture(t)

	valid, err := f.credentials.Verify(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestBatchAllOrNothing(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)
	// offeringB is licensed but not completed.
	_, err := f.service.Purchase(ctx, f.learner.ID, f.offeringB.ID, 1, 1_000)
	require.NoError(t, err)

	balanceBefore := f.store.balance("wallet-learner")

	_, err = f.credentials.MintOrGrowBatch(ctx, f.learner.ID, []int64{f.offering.ID, f.offeringB.ID}, "Ada", "ref-1", "c-1", 1_000)
	require.ErrorIs(t, err, apperrors.ErrOfferingNotCompleted)

	// No credential, no debit, no burnt commitment.
	assert.Equal(t, balanceBefore, f.store.balance("wallet-learner"))
	_, err = f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada", "ref-1", "c-1", 50)
	assert.NoError(t, err)
}

func TestBatchMintAndGrowTogether(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)
	f.completeOffering(t, f.offeringB)

	balanceBefore := f.store.balance("wallet-learner")

	credential, err := f.credentials.MintOrGrowBatch(ctx, f.learner.ID, []int64{f.offering.ID, f.offeringB.ID}, "Ada", "ref-1", "c-1", 60)
	require.NoError(t, err)

	assert.Equal(t, []int64{f.offering.ID, f.offeringB.ID}, credential.OfferingIDs)
	// First entry at mint price 50, second at growth price 10.
	assert.Equal(t, balanceBefore-60, f.store.balance("wallet-learner"))
}

func TestBatchRejectsInsufficientPayment(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()
	f.completeOffering(t, f.offering)
	f.completeOffering(t, f.offeringB)

	_, err := f.credentials.MintOrGrowBatch(ctx, f.learner.ID, []int64{f.offering.ID, f.offeringB.ID}, "Ada", "ref-1", "c-1", 59)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPayment)
}

func TestBatchRejectsDuplicateOfferings(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.credentials.MintOrGrowBatch(context.Background(), f.learner.ID, []int64{f.offering.ID, f.offering.ID}, "Ada", "ref-1", "c-1", 1_000)
	assert.ErrorIs(t, err, apperrors.ErrStateConflict)
}

// TestTwoOfferingJourney walks the full flow: purchase both offerings,
// complete all units, mint on the first completion, grow on the second, then
// verify the cumulative credential.
func TestTwoOfferingJourney(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	// Purchase both.
	_, err := f.service.Purchase(ctx, f.learner.ID, f.offering.ID, 2, 1_000)
	require.NoError(t, err)
	_, err = f.service.Purchase(ctx, f.learner.ID, f.offeringB.ID, 1, 1_000)
	require.NoError(t, err)

	// Complete offering A and mint.
	for idx := 0; idx < f.offering.UnitCount; idx++ {
		_, err := f.progress.CompleteUnit(ctx, f.learner.ID, f.offering.ID, idx)
		require.NoError(t, err)
	}
	credential, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offering.ID, "Ada Lovelace", "cv-v1", "pay-a", 50)
	require.NoError(t, err)

	// Complete offering B and grow.
	for idx := 0; idx < f.offeringB.UnitCount; idx++ {
		_, err := f.progress.CompleteUnit(ctx, f.learner.ID, f.offeringB.ID, idx)
		require.NoError(t, err)
	}
	grown, err := f.credentials.MintOrGrow(ctx, f.learner.ID, f.offeringB.ID, "", "cv-v2", "pay-b", 10)
	require.NoError(t, err)

	assert.Equal(t, credential.ID, grown.ID)
	assert.Equal(t, []int64{f.offering.ID, f.offeringB.ID}, grown.OfferingIDs)

	valid, err := f.credentials.Verify(ctx, credential.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	// Conservation: all debits landed on creator wallet plus treasury.
	spent := int64(1_000) - f.store.balance("wallet-learner")
	assert.Equal(t, spent, f.store.balance("wallet-creator")+f.store.balance("treasury"))
}
