package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/payment"
)

// settle moves the cost of an action from the payer wallet to the creator
// wallet and the platform treasury, split per the configured fee. The payment
// offered with the call is only an authorization cap: exactly the cost leaves
// the wallet, so the excess is refunded by never being taken. Runs inside the
// caller's transaction; any failure rolls the whole action back.
func settle(ctx context.Context, store repositories.Store, payerID, creatorID int64, cost int64, feeBps int, treasuryAccountID string) (payment.Breakdown, error) {
	creatorShare, platformShare, err := payment.Split(cost, feeBps)
	if err != nil {
		return payment.Breakdown{}, err
	}
	breakdown := payment.Breakdown{
		Cost:          cost,
		CreatorShare:  creatorShare,
		PlatformShare: platformShare,
	}

	if cost == 0 {
		return breakdown, nil
	}

	payerWallet, err := store.Accounts().GetWalletByOwner(ctx, payerID)
	if err != nil {
		return payment.Breakdown{}, fmt.Errorf("%w: payer wallet: %v", apperrors.ErrTransferFailed, err)
	}

	creatorWallet, err := store.Accounts().GetWalletByOwner(ctx, creatorID)
	if err != nil {
		return payment.Breakdown{}, fmt.Errorf("%w: creator wallet: %v", apperrors.ErrTransferFailed, err)
	}

	if err := store.Accounts().AddBalance(ctx, payerWallet.ID, -cost); err != nil {
		return payment.Breakdown{}, fmt.Errorf("%w: debit: %v", apperrors.ErrTransferFailed, err)
	}

	if creatorShare > 0 {
		if err := store.Accounts().AddBalance(ctx, creatorWallet.ID, creatorShare); err != nil {
			return payment.Breakdown{}, fmt.Errorf("%w: creator credit: %v", apperrors.ErrTransferFailed, err)
		}
	}

	if platformShare > 0 {
		if err := store.Accounts().AddBalance(ctx, treasuryAccountID, platformShare); err != nil {
			return payment.Breakdown{}, fmt.Errorf("%w: platform credit: %v", apperrors.ErrTransferFailed, err)
		}
	}

	return breakdown, nil
}

// newEvent builds a ledger event skeleton
func newEvent(kind models.EventKind, at time.Time) *models.LedgerEvent {
	return &models.LedgerEvent{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: at,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }
