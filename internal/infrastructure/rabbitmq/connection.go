// Package rabbitmq is the broker transport: a process-scoped connection,
// the exchange/queue topology, a confirming publisher and a manual-ack consumer.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/pkg/retry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

var (
	ErrNotConnected = errors.New("not connected to RabbitMQ")
	ErrShutdown     = errors.New("connection is shutting down")
)

// Connection owns the AMQP connection of the process. It re-dials on an
// unexpected close; publishers and consumers open their own channels on it.
type Connection struct {
	url    string
	retry  retry.Config
	logger zerolog.Logger

	mu     sync.RWMutex
	conn   *amqp.Connection
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Dial connects with bounded retries and starts watching the connection.
func Dial(ctx context.Context, cfg *config.RabbitMQConfig, logger zerolog.Logger) (*Connection, error) {
	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 5
	}
	delay := cfg.ConnectRetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		url:    cfg.URL,
		logger: logger.With().Str("component", "rabbitmq").Logger(),
		ctx:    watchCtx,
		cancel: cancel,
	}
	c.retry = retry.Config{
		MaxAttempts:  uint(attempts),
		InitialDelay: delay,
		MaxDelay:     10 * delay,
		OnRetry: func(n uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", n+1).Msg("rabbitmq not reachable, retrying")
		},
	}

	conn, err := c.dial(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
	}
	c.conn = conn
	c.logger.Info().Msg("Connected to RabbitMQ")

	c.wg.Add(1)
	go c.watch(conn)

	return c, nil
}

func (c *Connection) dial(ctx context.Context) (*amqp.Connection, error) {
	return retry.DoWithResult(ctx, c.retry, func() (*amqp.Connection, error) {
		return amqp.Dial(c.url)
	})
}

// watch re-dials whenever the broker closes the connection unexpectedly.
func (c *Connection) watch(conn *amqp.Connection) {
	defer c.wg.Done()

	for {
		notify := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.ctx.Done():
			return
		case amqpErr := <-notify:
			if c.ctx.Err() != nil {
				return
			}
			if amqpErr != nil {
				c.logger.Error().Err(amqpErr).Msg("RabbitMQ connection lost, re-dialing")
			} else {
				c.logger.Error().Msg("RabbitMQ connection closed, re-dialing")
			}
		}

		for {
			next, err := c.dial(c.ctx)
			if err == nil {
				conn = next
				break
			}
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Error().Err(err).Msg("RabbitMQ re-dial failed, trying again")
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()
		c.logger.Info().Msg("Reconnected to RabbitMQ")
	}
}

// Channel opens a new channel on the current connection.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrShutdown
	}
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrNotConnected
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn != nil && !c.conn.IsClosed() && !c.closed
}

// Close stops re-dialing and closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()

	var err error
	if conn != nil && !conn.IsClosed() {
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}
