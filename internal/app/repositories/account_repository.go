package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
	"github.com/mertcelik/eduledger/internal/pkg/dberrors"
)

// AccountRepository handles native-unit balance operations
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

// GetByID retrieves an account by its identifier
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, owner_user_id, kind, balance, created_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.OwnerUserID,
		&account.Kind,
		&account.Balance,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}

	return &account, nil
}

// GetWalletByOwner retrieves a user's wallet account
func (r *AccountRepository) GetWalletByOwner(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT id, owner_user_id, kind, balance, created_at
		FROM accounts
		WHERE owner_user_id = $1 AND kind = $2
	`

	var account models.Account
	err := r.db.QueryRow(ctx, query, userID, models.AccountWallet).Scan(
		&account.ID,
		&account.OwnerUserID,
		&account.Kind,
		&account.Balance,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error retrieving wallet: %w", err)
	}

	return &account, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, owner_user_id, kind, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		account.ID, account.OwnerUserID, account.Kind, account.Balance).
		Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating account: %w", err)
	}

	return nil
}

// AddBalance applies a signed delta to an account balance. The non-negative
// balance check constraint turns an overdraft into ErrInsufficientBalance
// without mutating the row.
func (r *AccountRepository) AddBalance(ctx context.Context, id string, delta int64) error {
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, query, delta, id)
	if err != nil {
		if dberrors.IsCheckViolation(err, "accounts_balance_non_negative") {
			return apperrors.ErrInsufficientBalance
		}
		return fmt.Errorf("error updating account balance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}

	return nil
}
