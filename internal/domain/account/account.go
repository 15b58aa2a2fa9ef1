// Package account models a user's wallet on the payments side of the saga.
package account

import (
	"time"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/google/uuid"
)

// Account holds one user's balance in minor units. Version increases on
// every balance change and backs the optimistic check in the store.
type Account struct {
	ID        uuid.UUID
	UserID    string
	Balance   int64
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount opens a wallet for userID. A user has at most one wallet,
// which the store enforces.
func NewAccount(userID string, opening int64) (*Account, error) {
	switch {
	case userID == "":
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	case opening < 0:
		return nil, errors.NewValidationError("initial_balance", "cannot be negative")
	}

	created := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   opening,
		CreatedAt: created,
		UpdatedAt: created,
	}, nil
}

// CanCover reports whether a debit of amount would keep the balance non-negative.
func (a *Account) CanCover(amount int64) bool {
	return amount <= a.Balance
}

// Debit withdraws amount for an order payment. The wallet is left untouched
// on ErrInsufficientFunds.
func (a *Account) Debit(amount int64) error {
	if err := positive(amount); err != nil {
		return err
	}
	if !a.CanCover(amount) {
		return errors.ErrInsufficientFunds
	}
	a.apply(-amount)
	return nil
}

// Credit is the top-up path.
func (a *Account) Credit(amount int64) error {
	if err := positive(amount); err != nil {
		return err
	}
	a.apply(amount)
	return nil
}

func (a *Account) apply(delta int64) {
	a.Balance += delta
	a.Version++
	a.UpdatedAt = time.Now().UTC()
}

func positive(amount int64) error {
	if amount > 0 {
		return nil
	}
	return errors.NewValidationError("amount", "must be greater than 0")
}
