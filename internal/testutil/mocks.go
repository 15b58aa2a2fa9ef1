package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/google/uuid"
)

// --- Broker Mock ---

// PublishedMessage records one successful publish.
type PublishedMessage struct {
	RoutingKey string
	Message    outbox.Message
}

// MockBroker records publishes. PublishFunc, when set, decides the outcome.
type MockBroker struct {
	mu        sync.Mutex
	published []PublishedMessage
	attempts  int

	PublishFunc func(ctx context.Context, routingKey string, msg *outbox.Message) error
}

func NewMockBroker() *MockBroker {
	return &MockBroker{}
}

func (b *MockBroker) Publish(ctx context.Context, routingKey string, msg *outbox.Message) error {
	b.mu.Lock()
	b.attempts++
	fn := b.PublishFunc
	b.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, routingKey, msg); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, PublishedMessage{RoutingKey: routingKey, Message: *msg})
	return nil
}

// Published returns a copy of the successful publishes in order.
func (b *MockBroker) Published() []PublishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PublishedMessage, len(b.published))
	copy(out, b.published)
	return out
}

// Attempts returns the number of Publish calls, failed ones included.
func (b *MockBroker) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// --- Notifier Mock ---

type Notification struct {
	UserID  string
	OrderID uuid.UUID
	Status  order.Status
}

type MockNotifier struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

func (n *MockNotifier) NotifyOrderStatus(ctx context.Context, userID string, orderID uuid.UUID, status order.Status) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{UserID: userID, OrderID: orderID, Status: status})
	return n.Err
}

func (n *MockNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
