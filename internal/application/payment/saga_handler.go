package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/account"
	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/cassiomorais/gozon/internal/domain/payment"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// SagaHandler consumes PaymentRequested: it debits the user's account or
// records a rejection, and enqueues the PaymentResult, all in one transaction.
type SagaHandler struct {
	guard    InboxGuard
	payments payment.Repository
	accounts account.Repository
	outbox   outbox.Repository
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

func NewSagaHandler(
	guard InboxGuard,
	payments payment.Repository,
	accounts account.Repository,
	outboxRepo outbox.Repository,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *SagaHandler {
	return &SagaHandler{
		guard:    guard,
		payments: payments,
		accounts: accounts,
		outbox:   outboxRepo,
		logger:   logger.With().Str("component", "payment-saga").Logger(),
		metrics:  metrics,
	}
}

// Handle processes one PaymentRequested body.
func (h *SagaHandler) Handle(ctx context.Context, body []byte) error {
	req, err := events.DecodePaymentRequested(body)
	if err != nil {
		return err
	}

	log := h.logger.With().
		Str("message_id", req.MessageID.String()).
		Str("order_id", req.OrderID.String()).
		Str("user_id", req.UserID).
		Logger()

	var recorded *payment.Payment
	applied, err := h.guard.Process(ctx, req.MessageID, func(txCtx context.Context) error {
		p, err := h.charge(txCtx, req)
		recorded = p
		return err
	})
	if err != nil {
		return fmt.Errorf("handle PaymentRequested %s: %w", req.MessageID, err)
	}

	switch {
	case !applied:
		log.Info().Msg("Duplicate PaymentRequested ignored")
	case recorded == nil:
		log.Info().Msg("Payment already recorded for order, skipping")
	default:
		outcome := "success"
		if !recorded.Success {
			outcome = "rejected"
		}
		if h.metrics != nil {
			h.metrics.PaymentsTotal.WithLabelValues(outcome).Inc()
		}
		log.Info().
			Bool("success", recorded.Success).
			Str("reason", recorded.ReasonString()).
			Int64("price", recorded.Price).
			Msg("Payment recorded")
	}
	return nil
}

// charge runs inside the inbox transaction. It returns nil, nil when the
// order already has a payment.
func (h *SagaHandler) charge(ctx context.Context, req events.PaymentRequested) (*payment.Payment, error) {
	exists, err := h.payments.ExistsForOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	p, err := h.decide(ctx, req)
	if err != nil {
		return nil, err
	}

	// a concurrent payment for the same order aborts this transaction, debit included
	if err := h.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	msg, err := outbox.NewMessage(events.NewPaymentResult(p.OrderID, p.UserID, p.Success, p.Reason))
	if err != nil {
		return nil, err
	}
	if err := h.outbox.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("enqueue PaymentResult: %w", err)
	}
	return p, nil
}

func (h *SagaHandler) decide(ctx context.Context, req events.PaymentRequested) (*payment.Payment, error) {
	acct, err := h.accounts.LockByUserID(ctx, req.UserID)
	if errors.Is(err, domainErrors.ErrAccountNotFound) {
		return payment.Rejected(req.OrderID, req.UserID, req.Price, payment.ReasonAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}

	if !acct.CanCover(req.Price) {
		return payment.Rejected(req.OrderID, req.UserID, req.Price, payment.ReasonInsufficientFunds)
	}

	if err := acct.Debit(req.Price); err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}
	if err := h.accounts.Update(ctx, acct); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return payment.Approved(req.OrderID, req.UserID, req.Price)
}
