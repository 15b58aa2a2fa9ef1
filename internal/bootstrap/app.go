package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cassiomorais/gozon/internal/controller"
	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/cassiomorais/gozon/internal/infrastructure/rabbitmq"
	infraRedis "github.com/cassiomorais/gozon/internal/infrastructure/redis"
	"github.com/cassiomorais/gozon/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App holds the process-scoped resources of one service.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Broker   *rabbitmq.Connection
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	tracer *sdktrace.TracerProvider
}

// New loads the configuration of service and connects to every dependency.
// The broker topology is declared before New returns.
func New(ctx context.Context, service string) (*App, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout).
		With().Str("service", service).Str("instance_id", cfg.InstanceID).Logger()
	log.Logger = logger
	logger.Info().Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(service, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = observability.NewMetrics("gozon_"+service, app.Registry)

	app.Pool, err = postgres.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Str("database", cfg.Database.Database).Msg("Connected to PostgreSQL")

	app.Redis, err = infraRedis.NewClient(ctx, &cfg.Redis, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Msg("Connected to Redis")

	app.Broker, err = rabbitmq.Dial(ctx, &cfg.RabbitMQ, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	deadLetter := cfg.Consumer.PoisonPolicy == config.PoisonPolicyDeadLetter
	if err := rabbitmq.DeclareTopology(app.Broker, rabbitmq.DefaultTopology(cfg.RabbitMQ.Exchange, deadLetter)); err != nil {
		app.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}
	logger.Info().Str("exchange", cfg.RabbitMQ.Exchange).Bool("dead_letter", deadLetter).Msg("Connected to RabbitMQ")

	return app, nil
}

// HealthController checks every dependency the service needs to do work.
func (a *App) HealthController() *controller.HealthController {
	return controller.NewHealthController(
		controller.Check{Name: "database", Ping: a.Pool.Ping},
		controller.Check{Name: "redis", Ping: func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }},
		controller.Check{Name: "broker", Ping: func(ctx context.Context) error {
			if !a.Broker.IsConnected() {
				return rabbitmq.ErrNotConnected
			}
			return nil
		}},
	)
}

// RouterDeps returns the router dependencies shared by both services.
func (a *App) RouterDeps() controller.RouterDeps {
	return controller.RouterDeps{
		Service:  a.Config.Service,
		Server:   a.Config.Server,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
		Health:   a.HealthController(),
	}
}

// Server builds the HTTP server for handler from the server config.
func (a *App) Server(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      handler,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Close releases resources in reverse order of acquisition. Safe on a
// partially built App.
func (a *App) Close() {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close broker connection")
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.tracer != nil {
		if err := observability.Shutdown(context.Background(), a.tracer); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}
}
