package order

import (
	"context"
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
)

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	UserID string
	Price  int64
}

// CreateOrderUseCase stores a NEW order together with its PaymentRequested outbox row.
type CreateOrderUseCase struct {
	orders    order.Repository
	outbox    outbox.Repository
	txManager TransactionManager
	metrics   *observability.Metrics
}

func NewCreateOrderUseCase(orders order.Repository, outboxRepo outbox.Repository, txManager TransactionManager, metrics *observability.Metrics) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orders:    orders,
		outbox:    outboxRepo,
		txManager: txManager,
		metrics:   metrics,
	}
}

// Execute creates the order. Either both rows commit or neither does.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	o, err := order.NewOrder(req.UserID, req.Price)
	if err != nil {
		return nil, err
	}

	msg, err := outbox.NewMessage(events.NewPaymentRequested(o.ID, o.UserID, o.Price))
	if err != nil {
		return nil, err
	}

	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}
		if err := uc.outbox.Insert(txCtx, msg); err != nil {
			return fmt.Errorf("enqueue PaymentRequested: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrdersCreated.Inc()
	}
	return o, nil
}
