package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/auth"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/helpers"
)

// CredentialService maintains the one-per-learner growing credential. A
// credential is issued on the first qualifying completion and grows by one
// offering entry per subsequent one; it is non-transferable by construction
// (no transfer operation exists) and only an administrator can invalidate it.
type CredentialService struct {
	store repositories.Store
	authz *auth.AuthorizationService
	cfg   *config.Config
	lgr   zerolog.Logger
	now   func() time.Time
}

// NewCredentialService creates a new credential service instance
func NewCredentialService(store repositories.Store, authz *auth.AuthorizationService, cfg *config.Config, lgr zerolog.Logger) *CredentialService {
	return &CredentialService{
		store: store,
		authz: authz,
		cfg:   cfg,
		lgr:   lgr,
		now:   time.Now,
	}
}

// resolvePrice picks the creator's override if one exists, the ledger default
// otherwise.
func resolvePrice(ctx context.Context, store repositories.Store, settings *models.PlatformSettings, offeringID int64, kind models.PriceKind) (int64, error) {
	override, err := store.Credentials().GetPriceOverride(ctx, offeringID, kind)
	if err != nil {
		return 0, err
	}
	if override != nil {
		return override.Price, nil
	}
	if kind == models.PriceKindMint {
		return settings.DefaultMintPrice, nil
	}
	return settings.DefaultGrowthPrice, nil
}

// checkEligibility enforces the cross-ledger gates for growing a credential
// with an offering: the offering must be completed, and a license must exist
// for the pair. A license that expired after completion still qualifies; one
// that never existed does not.
func checkEligibility(ctx context.Context, store repositories.Store, learnerID, offeringID int64) error {
	if _, err := store.Offerings().GetByID(ctx, offeringID); err != nil {
		return err
	}

	completion, err := store.Progress().GetCompletion(ctx, learnerID, offeringID)
	if err != nil {
		return err
	}
	if !completion.Completed {
		return apperrors.ErrOfferingNotCompleted
	}

	if _, err := store.Licenses().Get(ctx, learnerID, offeringID); err != nil {
		if errors.Is(err, apperrors.ErrLicenseNotFound) {
			return apperrors.NewStateConflictError("no license was ever held for this offering")
		}
		return err
	}

	return nil
}

func (s *CredentialService) validateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > s.cfg.Ledger.MaxDisplayNameLength {
		return fmt.Errorf("%w: must be 1-%d characters", apperrors.ErrDisplayNameInvalid, s.cfg.Ledger.MaxDisplayNameLength)
	}
	return nil
}

// MintOrGrow issues the learner's credential on their first qualifying
// completion, or appends one offering to it on a subsequent one. The payment
// commitment is consumed before any transfer, so a retried call with the
// same commitment is rejected even if settlement was interrupted.
func (s *CredentialService) MintOrGrow(ctx context.Context, learnerID, offeringID int64, displayName, contentRef, commitment string, paymentOffered int64) (*models.Credential, error) {
	if strings.TrimSpace(commitment) == "" {
		return nil, apperrors.ErrEmptyCommitment
	}

	now := s.now()
	var credential *models.Credential
	var minted bool

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		if err := checkEligibility(ctx, store, learnerID, offeringID); err != nil {
			return err
		}

		// Burn the commitment first; the insert conflicts on replay.
		if err := store.Credentials().ConsumeCommitment(ctx, commitment, learnerID, now); err != nil {
			return err
		}

		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}
		offering, err := store.Offerings().GetByID(ctx, offeringID)
		if err != nil {
			return err
		}

		existing, err := store.Credentials().GetByLearner(ctx, learnerID)
		switch {
		case errors.Is(err, apperrors.ErrCredentialNotFound):
			minted = true
			if err := s.validateDisplayName(displayName); err != nil {
				return err
			}
			price, err := resolvePrice(ctx, store, settings, offeringID, models.PriceKindMint)
			if err != nil {
				return err
			}
			if paymentOffered < price {
				return fmt.Errorf("%w: need %d, offered %d", apperrors.ErrInsufficientPayment, price, paymentOffered)
			}

			credential = &models.Credential{
				LearnerID:      learnerID,
				DisplayName:    strings.TrimSpace(displayName),
				Valid:          true,
				ContentRef:     contentRef,
				IssuedAt:       now,
				LastUpdated:    now,
				LastCommitment: commitment,
			}
			if err := store.Credentials().Create(ctx, credential); err != nil {
				return err
			}
			if err := store.Credentials().AppendEntry(ctx, &models.CredentialEntry{
				CredentialID: credential.ID,
				OfferingID:   offeringID,
				Position:     0,
				EarnedAt:     now,
			}); err != nil {
				return err
			}
			credential.OfferingIDs = []int64{offeringID}

			breakdown, err := settle(ctx, store, learnerID, offering.CreatorID, price, settings.FeeBps, settings.TreasuryAccountID)
			if err != nil {
				return err
			}

			event := newEvent(models.EventCredentialIssued, now)
			event.LearnerID = int64Ptr(learnerID)
			event.OfferingID = int64Ptr(offeringID)
			event.CredentialID = int64Ptr(credential.ID)
			event.Amount = int64Ptr(price)
			event.Commitment = strPtr(commitment)
			event.Payload = map[string]interface{}{
				"displayName":   credential.DisplayName,
				"contentRef":    contentRef,
				"courseCount":   1,
				"creatorShare":  breakdown.CreatorShare,
				"platformShare": breakdown.PlatformShare,
			}
			return store.Events().Insert(ctx, event)

		case err != nil:
			return err

		default:
			credential = existing

			entries, err := store.Credentials().GetEntries(ctx, credential.ID)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if entry.OfferingID == offeringID {
					return apperrors.ErrOfferingAlreadyEarned
				}
			}

			price, err := resolvePrice(ctx, store, settings, offeringID, models.PriceKindGrowth)
			if err != nil {
				return err
			}
			if paymentOffered < price {
				return fmt.Errorf("%w: need %d, offered %d", apperrors.ErrInsufficientPayment, price, paymentOffered)
			}

			if err := store.Credentials().AppendEntry(ctx, &models.CredentialEntry{
				CredentialID: credential.ID,
				OfferingID:   offeringID,
				Position:     len(entries),
				EarnedAt:     now,
			}); err != nil {
				return err
			}

			credential.ContentRef = contentRef
			credential.LastUpdated = now
			credential.LastCommitment = commitment
			if err := store.Credentials().Update(ctx, credential); err != nil {
				return err
			}

			credential.OfferingIDs = nil
			for _, entry := range entries {
				credential.OfferingIDs = append(credential.OfferingIDs, entry.OfferingID)
			}
			credential.OfferingIDs = append(credential.OfferingIDs, offeringID)

			breakdown, err := settle(ctx, store, learnerID, offering.CreatorID, price, settings.FeeBps, settings.TreasuryAccountID)
			if err != nil {
				return err
			}

			event := newEvent(models.EventCredentialGrown, now)
			event.LearnerID = int64Ptr(learnerID)
			event.OfferingID = int64Ptr(offeringID)
			event.CredentialID = int64Ptr(credential.ID)
			event.Amount = int64Ptr(price)
			event.Commitment = strPtr(commitment)
			event.Payload = map[string]interface{}{
				"contentRef":    contentRef,
				"courseCount":   len(credential.OfferingIDs),
				"creatorShare":  breakdown.CreatorShare,
				"platformShare": breakdown.PlatformShare,
			}
			return store.Events().Insert(ctx, event)
		}
	})
	if err != nil {
		return nil, err
	}

	s.lgr.Info().
		Int64("learnerID", learnerID).
		Int64("offeringID", offeringID).
		Int64("credentialID", credential.ID).
		Bool("minted", minted).
		Int("courseCount", len(credential.OfferingIDs)).
		Msg("Credential minted or grown")

	return credential, nil
}

// MintOrGrowBatch applies the mint-or-grow preconditions to every offering in
// the list and commits all appends together. Any failing entry rejects the
// entire batch.
func (s *CredentialService) MintOrGrowBatch(ctx context.Context, learnerID int64, offeringIDs []int64, displayName, contentRef, commitment string, paymentOffered int64) (*models.Credential, error) {
	if strings.TrimSpace(commitment) == "" {
		return nil, apperrors.ErrEmptyCommitment
	}
	if len(offeringIDs) == 0 {
		return nil, apperrors.NewValidationError("offering list is empty")
	}
	seen := make(map[int64]bool, len(offeringIDs))
	for _, id := range offeringIDs {
		if seen[id] {
			return nil, apperrors.NewStateConflictError("duplicate offering in batch")
		}
		seen[id] = true
	}

	now := s.now()
	var credential *models.Credential

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		for _, offeringID := range offeringIDs {
			if err := checkEligibility(ctx, store, learnerID, offeringID); err != nil {
				return err
			}
		}

		if err := store.Credentials().ConsumeCommitment(ctx, commitment, learnerID, now); err != nil {
			return err
		}

		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}

		existing, err := store.Credentials().GetByLearner(ctx, learnerID)
		var entries []*models.CredentialEntry
		switch {
		case errors.Is(err, apperrors.ErrCredentialNotFound):
			if err := s.validateDisplayName(displayName); err != nil {
				return err
			}
			credential = &models.Credential{
				LearnerID:      learnerID,
				DisplayName:    strings.TrimSpace(displayName),
				Valid:          true,
				ContentRef:     contentRef,
				IssuedAt:       now,
				LastUpdated:    now,
				LastCommitment: commitment,
			}
			if err := store.Credentials().Create(ctx, credential); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			credential = existing
			entries, err = store.Credentials().GetEntries(ctx, credential.ID)
			if err != nil {
				return err
			}
			credential.ContentRef = contentRef
			credential.LastUpdated = now
			credential.LastCommitment = commitment
			if err := store.Credentials().Update(ctx, credential); err != nil {
				return err
			}
		}

		credential.OfferingIDs = nil
		for _, entry := range entries {
			if seen[entry.OfferingID] {
				return apperrors.ErrOfferingAlreadyEarned
			}
			credential.OfferingIDs = append(credential.OfferingIDs, entry.OfferingID)
		}

		// First entry of a fresh credential pays the mint price, every other
		// entry the growth price; the batch fee is the checked sum.
		var totalFee int64
		prices := make([]int64, len(offeringIDs))
		mintNext := existing == nil

		for i, offeringID := range offeringIDs {
			kind := models.PriceKindGrowth
			if mintNext {
				kind = models.PriceKindMint
				mintNext = false
			}
			price, err := resolvePrice(ctx, store, settings, offeringID, kind)
			if err != nil {
				return err
			}
			prices[i] = price
			totalFee, err = helpers.CheckedAdd(totalFee, price)
			if err != nil {
				return err
			}
		}
		if paymentOffered < totalFee {
			return fmt.Errorf("%w: need %d, offered %d", apperrors.ErrInsufficientPayment, totalFee, paymentOffered)
		}

		position := len(entries)
		for i, offeringID := range offeringIDs {
			price := prices[i]

			if err := store.Credentials().AppendEntry(ctx, &models.CredentialEntry{
				CredentialID: credential.ID,
				OfferingID:   offeringID,
				Position:     position,
				EarnedAt:     now,
			}); err != nil {
				return err
			}
			position++
			credential.OfferingIDs = append(credential.OfferingIDs, offeringID)

			offering, err := store.Offerings().GetByID(ctx, offeringID)
			if err != nil {
				return err
			}
			breakdown, err := settle(ctx, store, learnerID, offering.CreatorID, price, settings.FeeBps, settings.TreasuryAccountID)
			if err != nil {
				return err
			}

			kindEvent := models.EventCredentialGrown
			if position == 1 && existing == nil {
				kindEvent = models.EventCredentialIssued
			}
			event := newEvent(kindEvent, now)
			event.LearnerID = int64Ptr(learnerID)
			event.OfferingID = int64Ptr(offeringID)
			event.CredentialID = int64Ptr(credential.ID)
			event.Amount = int64Ptr(price)
			event.Commitment = strPtr(commitment)
			event.Payload = map[string]interface{}{
				"contentRef":    contentRef,
				"courseCount":   position,
				"batch":         true,
				"creatorShare":  breakdown.CreatorShare,
				"platformShare": breakdown.PlatformShare,
			}
			if err := store.Events().Insert(ctx, event); err != nil {
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
		Int64("credentialID", credential.ID).
		Int("batchSize", len(offeringIDs)).
		Int("courseCount", len(credential.OfferingIDs)).
		Msg("Credential batch applied")

	return credential, nil
}

// UpdateContentRef refreshes only the content reference of the caller's
// credential, with the same replay protection as mint-or-grow.
func (s *CredentialService) UpdateContentRef(ctx context.Context, learnerID, credentialID int64, newContentRef, commitment string) (*models.Credential, error) {
	if strings.TrimSpace(commitment) == "" {
		return nil, apperrors.ErrEmptyCommitment
	}

	now := s.now()
	var credential *models.Credential

	err := s.store.ExecTx(ctx, func(store repositories.Store) error {
		existing, err := store.Credentials().GetByID(ctx, credentialID)
		if err != nil {
			return err
		}
		if existing.LearnerID != learnerID {
			return apperrors.NewForbiddenError(apperrors.ErrCredentialNotOwned.Error())
		}

		if err := store.Credentials().ConsumeCommitment(ctx, commitment, learnerID, now); err != nil {
			return err
		}

		credential = existing
		credential.ContentRef = newContentRef
		credential.LastUpdated = now
		credential.LastCommitment = commitment
		if err := store.Credentials().Update(ctx, credential); err != nil {
			return err
		}

		event := newEvent(models.EventCredentialUpdated, now)
		event.LearnerID = int64Ptr(learnerID)
		event.CredentialID = int64Ptr(credentialID)
		event.Commitment = strPtr(commitment)
		event.Payload = map[string]interface{}{
			"contentRef": newContentRef,
		}
		return store.Events().Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return credential, nil
}

// SetPrice overrides the ledger default credential price for one offering and
// price kind. Only the offering's creator may call it; the override is capped
// by the configured ledger-wide maximum.
func (s *CredentialService) SetPrice(ctx context.Context, callerID, offeringID int64, kind models.PriceKind, price int64) error {
	if err := s.authz.ValidateOfferingCreator(ctx, callerID, offeringID); err != nil {
		return err
	}
	if price <= 0 || price > s.cfg.Ledger.MaxCredentialPrice {
		return fmt.Errorf("%w: must be within (0, %d]", apperrors.ErrPriceOutOfRange, s.cfg.Ledger.MaxCredentialPrice)
	}

	return s.store.ExecTx(ctx, func(store repositories.Store) error {
		if err := store.Credentials().UpsertPriceOverride(ctx, &models.CredentialPrice{
			OfferingID: offeringID,
			Kind:       kind,
			Price:      price,
		}); err != nil {
			return err
		}

		event := newEvent(models.EventSettingsChanged, s.now())
		event.OfferingID = int64Ptr(offeringID)
		event.Amount = int64Ptr(price)
		event.Payload = map[string]interface{}{
			"setting": "credentialPrice",
			"kind":    kind,
		}
		return store.Events().Insert(ctx, event)
	})
}

// Revoke invalidates a credential. The record and its history persist for
// audit; only the validity flag flips.
func (s *CredentialService) Revoke(ctx context.Context, credentialID int64, reason string) error {
	now := s.now()

	return s.store.ExecTx(ctx, func(store repositories.Store) error {
		credential, err := store.Credentials().GetByID(ctx, credentialID)
		if err != nil {
			return err
		}

		if err := store.Credentials().SetValidity(ctx, credential.ID, false, strPtr(reason)); err != nil {
			return err
		}

		event := newEvent(models.EventCredentialRevoked, now)
		event.LearnerID = int64Ptr(credential.LearnerID)
		event.CredentialID = int64Ptr(credential.ID)
		event.Payload = map[string]interface{}{
			"reason": reason,
		}
		return store.Events().Insert(ctx, event)
	})
}

// Verify reports whether a credential exists and carries a set validity flag
func (s *CredentialService) Verify(ctx context.Context, credentialID int64) (bool, error) {
	credential, err := s.store.Credentials().GetByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCredentialNotFound) {
			return false, nil
		}
		return false, err
	}
	return credential.Valid, nil
}

// GetCumulativeOfferings returns the credential's offering identifiers in
// append order
func (s *CredentialService) GetCumulativeOfferings(ctx context.Context, credentialID int64) ([]int64, error) {
	if _, err := s.store.Credentials().GetByID(ctx, credentialID); err != nil {
		return nil, err
	}

	entries, err := s.store.Credentials().GetEntries(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	offeringIDs := make([]int64, 0, len(entries))
	for _, entry := range entries {
		offeringIDs = append(offeringIDs, entry.OfferingID)
	}

	return offeringIDs, nil
}

// GetCredential retrieves a credential with its offering list
func (s *CredentialService) GetCredential(ctx context.Context, credentialID int64) (*models.Credential, error) {
	credential, err := s.store.Credentials().GetByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	credential.OfferingIDs, err = s.GetCumulativeOfferings(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	return credential, nil
}
