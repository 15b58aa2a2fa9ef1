// Package events holds the integration events exchanged between the orders
// and payments services, their wire encoding and their broker routing.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/google/uuid"
)

// Type is the tag stored on outbox rows and carried as the AMQP Type property.
type Type string

const (
	TypePaymentRequested Type = "PaymentRequested"
	TypePaymentResult    Type = "PaymentResult"
)

const (
	RoutingKeyPaymentRequested = "payment.requested"
	RoutingKeyPaymentResult    = "payment.result"
)

// RoutingKey returns the broker routing key for t.
// The mapping is closed: an unknown type is a configuration error, never a default route.
func RoutingKey(t Type) (string, error) {
	switch t {
	case TypePaymentRequested:
		return RoutingKeyPaymentRequested, nil
	case TypePaymentResult:
		return RoutingKeyPaymentResult, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownEventType, string(t))
	}
}

// Event is implemented by every integration event.
type Event interface {
	EventID() uuid.UUID
	EventType() Type
	OccurredAt() time.Time
}

// PaymentRequested asks the payments service to charge userId for orderId.
type PaymentRequested struct {
	MessageID uuid.UUID `json:"messageId"`
	OrderID   uuid.UUID `json:"orderId"`
	UserID    string    `json:"userId"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPaymentRequested(orderID uuid.UUID, userID string, price int64) PaymentRequested {
	return PaymentRequested{
		MessageID: uuid.New(),
		OrderID:   orderID,
		UserID:    userID,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
}

func (e PaymentRequested) EventID() uuid.UUID    { return e.MessageID }
func (e PaymentRequested) EventType() Type       { return TypePaymentRequested }
func (e PaymentRequested) OccurredAt() time.Time { return e.CreatedAt }

// PaymentResult reports the payment outcome for an order.
type PaymentResult struct {
	MessageID uuid.UUID `json:"messageId"`
	OrderID   uuid.UUID `json:"orderId"`
	UserID    string    `json:"userId"`
	Success   bool      `json:"success"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPaymentResult(orderID uuid.UUID, userID string, success bool, reason *string) PaymentResult {
	return PaymentResult{
		MessageID: uuid.New(),
		OrderID:   orderID,
		UserID:    userID,
		Success:   success,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

func (e PaymentResult) EventID() uuid.UUID    { return e.MessageID }
func (e PaymentResult) EventType() Type       { return TypePaymentResult }
func (e PaymentResult) OccurredAt() time.Time { return e.CreatedAt }

// Encode serializes an event to its JSON wire form.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	return data, nil
}

// DecodePaymentRequested parses a PaymentRequested body. Unknown fields are ignored.
func DecodePaymentRequested(body []byte) (PaymentRequested, error) {
	var e PaymentRequested
	if err := json.Unmarshal(body, &e); err != nil {
		return PaymentRequested{}, errors.Malformed("decode PaymentRequested", err)
	}
	if e.MessageID == uuid.Nil {
		return PaymentRequested{}, errors.Malformed("PaymentRequested messageId is missing", nil)
	}
	if e.OrderID == uuid.Nil {
		return PaymentRequested{}, errors.Malformed("PaymentRequested orderId is missing", nil)
	}
	if e.Price <= 0 {
		return PaymentRequested{}, errors.Malformed("PaymentRequested price must be positive", nil)
	}
	return e, nil
}

// DecodePaymentResult parses a PaymentResult body. Unknown fields are ignored.
func DecodePaymentResult(body []byte) (PaymentResult, error) {
	var e PaymentResult
	if err := json.Unmarshal(body, &e); err != nil {
		return PaymentResult{}, errors.Malformed("decode PaymentResult", err)
	}
	if e.MessageID == uuid.Nil {
		return PaymentResult{}, errors.Malformed("PaymentResult messageId is missing", nil)
	}
	if e.OrderID == uuid.Nil {
		return PaymentResult{}, errors.Malformed("PaymentResult orderId is missing", nil)
	}
	return e, nil
}
