package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventOrderStatusChanged is the event name carried by order status notifications.
const EventOrderStatusChanged = "OrderStatusChanged"

// Publisher is the subset of the Redis client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// OrderNotification is the message published to a user's channel.
type OrderNotification struct {
	Event   string    `json:"event"`
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

// Notifier pushes order status changes to per-user Redis pub/sub channels.
type Notifier struct {
	client Publisher
}

func NewNotifier(client Publisher) *Notifier {
	return &Notifier{client: client}
}

// UserChannel returns the pub/sub channel of a user.
func UserChannel(userID string) string {
	return "orders:user:" + userID
}

// NotifyOrderStatus publishes the new status of an order to its owner's channel.
func (n *Notifier) NotifyOrderStatus(ctx context.Context, userID string, orderID uuid.UUID, status order.Status) error {
	payload, err := json.Marshal(OrderNotification{
		Event:   EventOrderStatusChanged,
		OrderID: orderID,
		Status:  status.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := n.client.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish order status: %w", err)
	}
	return nil
}
