package account

import (
	"context"
)

// Repository defines the interface for account persistence
type Repository interface {
	// Create inserts a new account; ErrAccountAlreadyExists if the user already has one
	Create(ctx context.Context, account *Account) error

	// GetByUserID retrieves the account owned by userID
	GetByUserID(ctx context.Context, userID string) (*Account, error)

	// LockByUserID locks the user's account for update (SELECT FOR UPDATE)
	LockByUserID(ctx context.Context, userID string) (*Account, error)

	// Update updates an existing account with optimistic locking
	Update(ctx context.Context, account *Account) error
}
