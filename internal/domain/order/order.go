package order

import (
	"time"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/google/uuid"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

type Order struct {
	ID        uuid.UUID
	UserID    string
	Price     int64 // minor currency unit
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(userID string, price int64) (*Order, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}
	if price <= 0 {
		return nil, errors.ErrInvalidPrice
	}

	now := time.Now().UTC()
	return &Order{
		ID:        uuid.New(),
		UserID:    userID,
		Price:     price,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SettlementStatus maps a payment outcome to the order's terminal status.
func SettlementStatus(success bool) Status {
	if success {
		return StatusFinished
	}
	return StatusCancelled
}

// Settle moves a NEW order to its terminal status.
func (o *Order) Settle(success bool) error {
	if o.Status.IsTerminal() {
		return errors.ErrInvalidStateTransition
	}

	o.Status = SettlementStatus(success)
	o.UpdatedAt = time.Now().UTC()
	return nil
}
