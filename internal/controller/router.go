package controller

import (
	"net/http"
	"time"

	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/gozon/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds what both services' routers share.
type RouterDeps struct {
	Service  string
	Server   config.ServerConfig
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Health   *HealthController
}

type OrdersRoutes struct {
	Orders *OrderController
}

type PaymentsRoutes struct {
	Accounts *AccountController
}

func NewOrdersRouter(deps RouterDeps, routes OrdersRoutes) *chi.Mux {
	r := newBaseRouter(deps)
	r.With(customMW.RateLimit(deps.Server.RateLimit)).Post("/orders/api/orders", routes.Orders.Create)
	r.Get("/orders/api/orders", routes.Orders.List)
	r.Get("/orders/api/orders/{id}", routes.Orders.Get)
	return r
}

func NewPaymentsRouter(deps RouterDeps, routes PaymentsRoutes) *chi.Mux {
	r := newBaseRouter(deps)
	limited := r.With(customMW.RateLimit(deps.Server.RateLimit))
	limited.Post("/payments/api/account", routes.Accounts.Create)
	limited.Post("/payments/api/account/topup", routes.Accounts.TopUp)
	r.Get("/payments/api/account/balance", routes.Accounts.Balance)
	return r
}

func newBaseRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing(deps.Service))
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Server.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: deps.Server.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	if deps.Health != nil {
		r.Get("/health", deps.Health.Health)
		r.Get("/health/live", deps.Health.Liveness)
		r.Get("/health/ready", deps.Health.Readiness)
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
