package auth

import (
	"context"
	"errors"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/logger"
)

// Authorization errors
var (
	ErrNotAdmin           = errors.New("only administrators can perform this action")
	ErrNotOfferingCreator = errors.New("only the offering's creator can perform this action")
)

// AuthorizationService handles capability checks: admin-only administrative
// actions and creator-only price overrides.
type AuthorizationService struct {
	store repositories.Store
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(store repositories.Store) *AuthorizationService {
	return &AuthorizationService{
		store: store,
	}
}

// IsAdmin checks if the user is an administrator
func (s *AuthorizationService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsAdmin")
		return false, err
	}
	return user.RoleType == models.RoleAdmin, nil
}

// ValidateAdmin validates that the user is an administrator or returns an error
func (s *AuthorizationService) ValidateAdmin(ctx context.Context, userID int64) error {
	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.NewForbiddenError(ErrNotAdmin.Error())
	}
	return nil
}

// ValidateOfferingCreator validates that the user authored the offering
func (s *AuthorizationService) ValidateOfferingCreator(ctx context.Context, userID, offeringID int64) error {
	offering, err := s.store.Offerings().GetByID(ctx, offeringID)
	if err != nil {
		return err
	}
	if offering.CreatorID != userID {
		return apperrors.NewForbiddenError(ErrNotOfferingCreator.Error())
	}
	return nil
}
