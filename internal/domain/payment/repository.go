package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for payment persistence
type Repository interface {
	// Create inserts a payment; ErrPaymentAlreadyExists if the order already has one
	Create(ctx context.Context, payment *Payment) error

	// ExistsForOrder reports whether a payment was already recorded for the order
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)

	// GetByOrderID retrieves the payment recorded for the order
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}
