package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/auth"
)

// AuthService handles registration and token-based authentication
type AuthService struct {
	store      repositories.Store
	jwtService *auth.JWTService
	lgr        zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service instance
func NewAuthService(store repositories.Store, jwtService *auth.JWTService, lgr zerolog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtService: jwtService,
		lgr:        lgr,
		now:        time.Now,
	}
}

// Register creates a user together with their wallet account. Only learner
// and creator roles self-register; administrators come from seed data.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string, role models.RoleType) (*models.User, *models.Account, error) {
	if role != models.RoleLearner && role != models.RoleCreator {
		return nil, nil, apperrors.NewValidationError("role must be LEARNER or CREATOR")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		RoleType:     role,
		CreatedAt:    s.now(),
	}
	wallet := &models.Account{
		ID:        uuid.New().String(),
		Kind:      models.AccountWallet,
		CreatedAt: s.now(),
	}

	err = s.store.ExecTx(ctx, func(store repositories.Store) error {
		if err := store.Users().Create(ctx, user); err != nil {
			return err
		}
		wallet.OwnerUserID = &user.ID
		return store.Accounts().Create(ctx, wallet)
	})
	if err != nil {
		return nil, nil, err
	}

	s.lgr.Info().
		Int64("userID", user.ID).
		Str("role", string(role)).
		Msg("User registered")

	return user, wallet, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, int, *models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", 0, nil, apperrors.ErrInvalidCredentials
		}
		return "", 0, nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", 0, nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", 0, nil, err
	}

	return token, expiresIn, user, nil
}

// GetUser returns the user record with their wallet identifier attached
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*models.User, *models.Account, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	wallet, err := s.store.Accounts().GetWalletByOwner(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, nil, err
	}
	return user, wallet, nil
}
