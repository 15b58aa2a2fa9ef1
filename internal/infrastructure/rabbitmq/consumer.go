package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Delivery outcomes, also used as metric labels.
const (
	OutcomeAcked        = "acked"
	OutcomeRequeued     = "requeued"
	OutcomeDeadLettered = "dead_lettered"
)

// Handler processes one message body. A nil error acks the delivery.
type Handler interface {
	Handle(ctx context.Context, body []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, body []byte) error

func (f HandlerFunc) Handle(ctx context.Context, body []byte) error {
	return f(ctx, body)
}

type ConsumerConfig struct {
	Queue          string
	Tag            string
	Prefetch       int
	HandlerTimeout time.Duration
	PoisonPolicy   string
	RetryDelay     time.Duration
}

// Consumer reads one queue sequentially with manual acknowledgements.
type Consumer struct {
	conn    *Connection
	cfg     ConsumerConfig
	handler Handler
	logger  zerolog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func NewConsumer(conn *Connection, cfg ConsumerConfig, handler Handler, logger zerolog.Logger, metrics *observability.Metrics) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 16
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.PoisonPolicy == "" {
		cfg.PoisonPolicy = config.PoisonPolicyRequeue
	}
	return &Consumer{
		conn:    conn,
		cfg:     cfg,
		handler: handler,
		logger:  logger.With().Str("component", "consumer").Str("queue", cfg.Queue).Logger(),
		metrics: metrics,
		tracer:  otel.Tracer(observability.TracerName),
	}
}

// Run consumes until ctx is cancelled, re-subscribing after channel failures.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.logger.Info().Msg("Consumer stopped")
			return nil
		}
		c.logger.Error().Err(err).Dur("retry_in", c.cfg.RetryDelay).Msg("Consumer interrupted, resubscribing")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	// closing the channel requeues anything prefetched but not yet acked
	defer ch.Close()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	c.logger.Info().Int("prefetch", c.cfg.Prefetch).Msg("Started consuming")

	for {
		select {
		case <-ctx.Done():
			if err := ch.Cancel(c.cfg.Tag, false); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cancel consumer")
			}
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.Dispatch(ctx, d)
		}
	}
}

// Dispatch runs the handler for one delivery and settles it.
// The handler context survives shutdown so an in-flight transaction can finish.
func (c *Consumer) Dispatch(ctx context.Context, d amqp.Delivery) string {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.HandlerTimeout)
	defer cancel()

	if d.Headers != nil {
		hctx = otel.GetTextMapPropagator().Extract(hctx, headerCarrier(d.Headers))
	}
	hctx, span := c.tracer.Start(hctx, "consume "+c.cfg.Queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination", c.cfg.Queue),
			attribute.String("messaging.message_id", d.MessageId),
		),
	)
	defer span.End()

	log := c.logger.With().Str("message_id", d.MessageId).Str("type", d.Type).Logger()

	start := time.Now()
	err := c.handler.Handle(hctx, d.Body)
	if c.metrics != nil {
		c.metrics.HandlerDuration.WithLabelValues(c.cfg.Queue).Observe(time.Since(start).Seconds())
	}

	outcome := c.settle(d, err, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("messaging.outcome", outcome))

	if c.metrics != nil {
		c.metrics.DeliveriesTotal.WithLabelValues(c.cfg.Queue, outcome).Inc()
	}
	return outcome
}

func (c *Consumer) settle(d amqp.Delivery, handleErr error, log zerolog.Logger) string {
	switch {
	case handleErr == nil:
		if err := d.Ack(false); err != nil {
			log.Error().Err(err).Msg("Failed to ack delivery")
		}
		return OutcomeAcked

	case errors.Is(handleErr, domainErrors.ErrMalformedMessage) && c.cfg.PoisonPolicy == config.PoisonPolicyDeadLetter:
		log.Error().Err(handleErr).Msg("Malformed message, dead-lettering")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("Failed to nack delivery")
		}
		return OutcomeDeadLettered

	default:
		log.Error().Err(handleErr).Msg("Handler failed, requeueing")
		if err := d.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("Failed to nack delivery")
		}
		return OutcomeRequeued
	}
}
