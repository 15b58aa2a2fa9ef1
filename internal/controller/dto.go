package controller

import (
	"time"

	"github.com/cassiomorais/gozon/internal/domain/order"
)

// --- Request DTOs ---
// JSON keys are camelCase to match the event payloads.

type CreateOrderRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
	Price  int64  `json:"price" validate:"gt=0"`
}

type CreateAccountRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

type TopUpRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

// --- Response DTOs ---

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type OrderResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Price     int64     `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type AccountResponse struct {
	UserID string `json:"userId"`
}

type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FromOrder converts a domain order into its API representation.
func FromOrder(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID.String(),
		UserID:    o.UserID,
		Price:     o.Price,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
	}
}
