package order

import (
	"context"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/google/uuid"
)

// GetOrderUseCase retrieves a single order.
type GetOrderUseCase struct {
	orders order.Repository
}

func NewGetOrderUseCase(orders order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

// ListOrdersUseCase lists a user's orders, newest first.
type ListOrdersUseCase struct {
	orders order.Repository
}

func NewListOrdersUseCase(orders order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, userID string) ([]*order.Order, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}
	return uc.orders.ListByUserID(ctx, userID)
}
