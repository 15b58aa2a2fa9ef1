package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cassiomorais/gozon/internal/domain/outbox"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// ErrNacked is returned when the broker refuses a publish.
var ErrNacked = errors.New("publish nacked by broker")

// Publisher publishes outbox messages on a confirm-mode channel and waits
// for the broker's confirm before returning.
type Publisher struct {
	conn     *Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(conn *Connection, exchange string) *Publisher {
	return &Publisher{conn: conn, exchange: exchange}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publishing builds the AMQP message for an outbox row.
func Publishing(msg *outbox.Message) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID.String(),
		Type:         string(msg.Type),
		Timestamp:    msg.CreatedAt,
		Body:         msg.Payload,
		Headers:      amqp.Table{},
	}
}

// Publish sends msg under routingKey and blocks until it is confirmed.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg *outbox.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := Publishing(msg)
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(pub.Headers))

	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, pub)
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.ID, err)
	}

	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm %s: %w", msg.ID, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNacked, msg.ID)
	}
	return nil
}

// Close closes the publisher's channel.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}
