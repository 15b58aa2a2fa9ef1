package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/account"
	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	accountColumns = `id, user_id, balance, version, created_at, updated_at`

	insertAccountSQL = `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	accountByUserSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`

	// The row must still carry the version the caller read; Debit/Credit
	// have already bumped a.Version by one.
	updateBalanceSQL = `UPDATE accounts SET balance = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5`
)

// AccountRepository stores wallets in the payments database.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) byUser(ctx context.Context, userID string, lock bool) (*account.Account, error) {
	q := accountByUserSQL
	if lock {
		q += ` FOR UPDATE`
	}
	var a account.Account
	err := ConnFromCtx(ctx, r.pool).QueryRow(ctx, q, userID).
		Scan(&a.ID, &a.UserID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domainErrors.ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("load account of %s: %w", userID, err)
	}
	return &a, nil
}

// Create fails with ErrAccountAlreadyExists when the user already has a wallet.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	_, err := ConnFromCtx(ctx, r.pool).Exec(ctx, insertAccountSQL,
		a.ID, a.UserID, a.Balance, a.Version, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err, "accounts_user_id_key") {
		return domainErrors.ErrAccountAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*account.Account, error) {
	return r.byUser(ctx, userID, false)
}

// LockByUserID holds the row lock until the surrounding transaction ends.
// Outside a transaction the lock is released immediately.
func (r *AccountRepository) LockByUserID(ctx context.Context, userID string) (*account.Account, error) {
	return r.byUser(ctx, userID, true)
}

func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	tag, err := ConnFromCtx(ctx, r.pool).Exec(ctx, updateBalanceSQL,
		a.Balance, a.Version, a.UpdatedAt, a.ID, a.Version-1)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domainErrors.ErrOptimisticLockFailed
	}
	return nil
}
