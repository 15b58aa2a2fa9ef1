package rabbitmq

import (
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueuePaymentRequests = "payments.payment-requests"
	QueuePaymentResults  = "orders.payment-results"
)

// Binding routes one routing key of the exchange into a queue.
type Binding struct {
	Queue      string
	RoutingKey string
}

// Topology describes the exchange and queues a service relies on.
type Topology struct {
	Exchange   string
	Bindings   []Binding
	DeadLetter bool
}

// DefaultTopology is shared by both services so that neither side can publish
// into an exchange whose queue does not exist yet.
func DefaultTopology(exchange string, deadLetter bool) Topology {
	return Topology{
		Exchange: exchange,
		Bindings: []Binding{
			{Queue: QueuePaymentRequests, RoutingKey: events.RoutingKeyPaymentRequested},
			{Queue: QueuePaymentResults, RoutingKey: events.RoutingKeyPaymentResult},
		},
		DeadLetter: deadLetter,
	}
}

// DeadLetterExchange returns the exchange receiving rejected messages.
func (t Topology) DeadLetterExchange() string {
	return t.Exchange + ".dlx"
}

// DeadLetterQueue returns the parking queue of queue.
func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}

// channelDeclarer is the part of *amqp.Channel used to declare topology.
type channelDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Declare creates the exchange, queues and bindings. All declarations are idempotent.
func (t Topology) Declare(ch channelDeclarer) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}

	var queueArgs amqp.Table
	if t.DeadLetter {
		dlx := t.DeadLetterExchange()
		if err := ch.ExchangeDeclare(dlx, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", dlx, err)
		}
		queueArgs = amqp.Table{"x-dead-letter-exchange": dlx}
	}

	for _, b := range t.Bindings {
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, queueArgs); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		if err := ch.QueueBind(b.Queue, b.RoutingKey, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.Queue, err)
		}

		if !t.DeadLetter {
			continue
		}
		dlq := DeadLetterQueue(b.Queue)
		if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", dlq, err)
		}
		// dead-lettered messages keep their original routing key
		if err := ch.QueueBind(dlq, b.RoutingKey, t.DeadLetterExchange(), false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", dlq, err)
		}
	}
	return nil
}

// DeclareTopology opens a short-lived channel on conn and declares t.
func DeclareTopology(conn *Connection, t Topology) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return t.Declare(ch)
}
