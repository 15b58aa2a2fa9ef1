package order

import (
	"context"

	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/google/uuid"
)

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InboxGuard runs fn at most once per message id, inside one transaction.
type InboxGuard interface {
	Process(ctx context.Context, messageID uuid.UUID, fn func(ctx context.Context) error) (bool, error)
}

// Notifier tells the order's owner about a status change. Delivery is best effort.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, userID string, orderID uuid.UUID, status order.Status) error
}
