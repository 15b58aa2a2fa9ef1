package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for order persistence
type Repository interface {
	Create(ctx context.Context, order *Order) error

	// GetByID retrieves an order; ErrOrderNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByUserID returns the user's orders, newest first
	ListByUserID(ctx context.Context, userID string) ([]*Order, error)

	// SettleIfNew sets the terminal status only while the order is still NEW.
	// It reports whether a row changed.
	SettleIfNew(ctx context.Context, id uuid.UUID, status Status) (bool, error)
}
