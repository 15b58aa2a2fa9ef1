package payment

import (
	"time"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/google/uuid"
)

// Rejection reasons recorded on failed payments.
const (
	ReasonAccountNotFound   = "Account not found"
	ReasonInsufficientFunds = "Insufficient funds"
)

// Payment is the immutable outcome of a payment request for one order.
// Both approval and rejection are terminal outcomes; Success tells them apart.
type Payment struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	UserID    string
	Price     int64
	Success   bool
	Reason    *string
	CreatedAt time.Time
}

// Approved creates a successful payment record.
func Approved(orderID uuid.UUID, userID string, price int64) (*Payment, error) {
	return newPayment(orderID, userID, price, true, nil)
}

// Rejected creates a failed payment record carrying the rejection reason.
func Rejected(orderID uuid.UUID, userID string, price int64, reason string) (*Payment, error) {
	if reason == "" {
		return nil, errors.NewValidationError("reason", "cannot be empty for a rejected payment")
	}
	return newPayment(orderID, userID, price, false, &reason)
}

func newPayment(orderID uuid.UUID, userID string, price int64, success bool, reason *string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, errors.NewValidationError("order_id", "cannot be empty")
	}
	if price <= 0 {
		return nil, errors.ErrInvalidPrice
	}

	return &Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		UserID:    userID,
		Price:     price,
		Success:   success,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReasonString returns the rejection reason or an empty string.
func (p *Payment) ReasonString() string {
	if p.Reason == nil {
		return ""
	}
	return *p.Reason
}
