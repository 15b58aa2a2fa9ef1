package order

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// SettlementHandler consumes PaymentResult and moves the order to its terminal status.
type SettlementHandler struct {
	guard    InboxGuard
	orders   order.Repository
	notifier Notifier
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

func NewSettlementHandler(guard InboxGuard, orders order.Repository, notifier Notifier, logger zerolog.Logger, metrics *observability.Metrics) *SettlementHandler {
	return &SettlementHandler{
		guard:    guard,
		orders:   orders,
		notifier: notifier,
		logger:   logger.With().Str("component", "order-settlement").Logger(),
		metrics:  metrics,
	}
}

// Handle processes one PaymentResult body.
func (h *SettlementHandler) Handle(ctx context.Context, body []byte) error {
	res, err := events.DecodePaymentResult(body)
	if err != nil {
		return err
	}

	log := h.logger.With().
		Str("message_id", res.MessageID.String()).
		Str("order_id", res.OrderID.String()).
		Logger()

	var settled *order.Order
	applied, err := h.guard.Process(ctx, res.MessageID, func(txCtx context.Context) error {
		o, err := h.orders.GetByID(txCtx, res.OrderID)
		if errors.Is(err, domainErrors.ErrOrderNotFound) {
			log.Warn().Msg("PaymentResult for unknown order, ignoring")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		status := order.SettlementStatus(res.Success)
		changed, err := h.orders.SettleIfNew(txCtx, o.ID, status)
		if err != nil {
			return err
		}
		if !changed {
			log.Info().Str("status", o.Status.String()).Msg("Order already settled, ignoring")
			return nil
		}

		o.Status = status
		settled = o
		return nil
	})
	if err != nil {
		return fmt.Errorf("handle PaymentResult %s: %w", res.MessageID, err)
	}
	if !applied {
		log.Info().Msg("Duplicate PaymentResult ignored")
		return nil
	}
	if settled == nil {
		return nil
	}

	if h.metrics != nil {
		h.metrics.OrdersSettled.WithLabelValues(settled.Status.String()).Inc()
	}
	log.Info().Str("user_id", settled.UserID).Str("status", settled.Status.String()).Msg("Order settled")

	// the status change is committed; a failed notification must not redeliver the message
	if err := h.notifier.NotifyOrderStatus(ctx, settled.UserID, settled.ID, settled.Status); err != nil {
		log.Warn().Err(err).Msg("Failed to notify order status")
	}
	return nil
}
