// Package outbox moves committed outbox rows to the broker.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/events"
	domainOutbox "github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPollInterval    = 500 * time.Millisecond
	defaultBatchSize       = 20
	defaultLeaseDuration   = 10 * time.Second
	defaultPublishTimeout  = 5 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 15 * time.Second

	markTimeout = 5 * time.Second
)

// Publish results, also used as metric labels.
const (
	ResultPublished   = "published"
	ResultFailed      = "failed"
	ResultUnroutable  = "unroutable"
	ResultBreakerOpen = "breaker_open"
)

// Broker publishes one outbox message and returns once the broker confirmed it.
type Broker interface {
	Publish(ctx context.Context, routingKey string, msg *domainOutbox.Message) error
}

type Config struct {
	PollInterval    time.Duration
	BatchSize       int
	LeaseDuration   time.Duration
	PublishTimeout  time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.LeaseDuration <= 0 {
		c.LeaseDuration = defaultLeaseDuration
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = defaultBreakerTimeout
	}
	if c.Clock == nil {
		c.Clock = func() time.Time { return time.Now().UTC() }
	}
}

// Relay polls the outbox: claim a leased batch, publish each row, mark the
// confirmed ones published. A row whose publish failed stays leased and is
// picked up again once the lease expires.
type Relay struct {
	repo    domainOutbox.Repository
	broker  Broker
	cfg     Config
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  zerolog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func NewRelay(repo domainOutbox.Repository, broker Broker, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Relay {
	cfg.applyDefaults()

	r := &Relay{
		repo:    repo,
		broker:  broker,
		cfg:     cfg,
		logger:  logger.With().Str("component", "outbox-relay").Logger(),
		metrics: metrics,
		tracer:  otel.Tracer(observability.TracerName),
	}
	r.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "outbox-broker",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			if r.metrics != nil {
				r.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return r
}

// Run polls until ctx is cancelled. Errors never stop the loop.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Int("batch_size", r.cfg.BatchSize).
		Dur("lease", r.cfg.LeaseDuration).
		Msg("Outbox relay started")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Outbox relay stopped")
			return nil
		case <-ticker.C:
			r.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce runs one claim/publish/mark iteration and returns how many
// messages were published.
func (r *Relay) ProcessOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "outbox.tick")
	defer span.End()

	now := r.cfg.Clock()
	msgs, err := r.repo.Claim(ctx, now, now.Add(r.cfg.LeaseDuration), r.cfg.BatchSize)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to claim outbox messages")
		span.RecordError(err)
		return 0
	}
	span.SetAttributes(attribute.Int("outbox.claimed", len(msgs)))

	published := make([]uuid.UUID, 0, len(msgs))
	for _, msg := range msgs {
		if ctx.Err() != nil {
			break
		}
		if r.publish(ctx, msg) {
			published = append(published, msg.ID)
		}
	}

	if len(published) > 0 {
		// marking must not be skipped because shutdown began mid-batch
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
		err := r.repo.MarkPublished(markCtx, published, r.cfg.Clock())
		cancel()
		if err != nil {
			// rows stay leased and will be published again after the lease; consumers dedupe
			r.logger.Error().Err(err).Int("count", len(published)).Msg("Failed to mark outbox messages published")
			span.RecordError(err)
		}
	}

	r.observe(ctx, start)
	return len(published)
}

func (r *Relay) publish(ctx context.Context, msg *domainOutbox.Message) bool {
	log := r.logger.With().Str("outbox_id", msg.ID.String()).Str("type", string(msg.Type)).Int("attempt", msg.Attempt).Logger()

	key, err := events.RoutingKey(msg.Type)
	if err != nil {
		log.Error().Err(err).Msg("Outbox message has no route, leaving it claimed")
		r.count(msg.Type, ResultUnroutable)
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, r.cfg.PublishTimeout)
	defer cancel()

	_, err = r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.broker.Publish(pctx, key, msg)
	})
	switch {
	case err == nil:
		log.Debug().Str("routing_key", key).Msg("Outbox message published")
		r.count(msg.Type, ResultPublished)
		return true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r.count(msg.Type, ResultBreakerOpen)
		return false
	default:
		log.Warn().Err(err).Msg("Failed to publish outbox message")
		r.count(msg.Type, ResultFailed)
		return false
	}
}

func (r *Relay) count(t events.Type, result string) {
	if r.metrics != nil {
		r.metrics.OutboxPublished.WithLabelValues(string(t), result).Inc()
	}
}

func (r *Relay) observe(ctx context.Context, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.OutboxTickSeconds.Observe(time.Since(start).Seconds())

	stats, err := r.repo.Stats(ctx, r.cfg.Clock())
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to collect outbox stats")
		return
	}
	r.metrics.OutboxPending.Set(float64(stats.Pending))
	r.metrics.OutboxLeased.Set(float64(stats.Leased))
}
