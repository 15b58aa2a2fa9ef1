package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fastBuckets    = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	handlerBuckets = append(append([]float64{}, fastBuckets...), 30)
)

// Metrics is the set of collectors one service exposes on /metrics. Both
// services register the full set; series a service never touches stay empty.
type Metrics struct {
	OutboxPublished   *prometheus.CounterVec // type, result
	OutboxPending     prometheus.Gauge
	OutboxLeased      prometheus.Gauge
	OutboxTickSeconds prometheus.Histogram

	DeliveriesTotal *prometheus.CounterVec   // queue, outcome
	HandlerDuration *prometheus.HistogramVec // queue

	PaymentsTotal *prometheus.CounterVec // outcome
	OrdersCreated prometheus.Counter
	OrdersSettled *prometheus.CounterVec // status

	HTTPRequestsTotal   *prometheus.CounterVec   // method, path, status
	HTTPRequestDuration *prometheus.HistogramVec // method, path

	// 0 closed, 1 half-open, 2 open.
	CircuitBreakerState *prometheus.GaugeVec
}

// NewMetrics registers every collector under namespace. A nil reg means the
// default registerer. Registering the same namespace twice panics.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Metrics{
		OutboxPublished: counter("outbox_publish_total", "Outbox publish attempts by event type and result", "type", "result"),
		OutboxPending:   gauge("outbox_pending", "Unpublished outbox messages"),
		OutboxLeased:    gauge("outbox_leased", "Unpublished outbox messages under an active lease"),
		OutboxTickSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_tick_duration_seconds",
			Help:      "Duration of one outbox claim, publish and mark iteration",
			Buckets:   fastBuckets,
		}),

		DeliveriesTotal: counter("consumer_deliveries_total", "Consumed deliveries by queue and outcome", "queue", "outcome"),
		HandlerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consumer_handler_duration_seconds",
			Help:      "Message handler duration in seconds",
			Buckets:   handlerBuckets,
		}, []string{"queue"}),

		PaymentsTotal: counter("payments_total", "Recorded payments by outcome", "outcome"),
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_created_total", Help: "Orders created",
		}),
		OrdersSettled: counter("orders_settled_total", "Orders moved to a terminal status", "status"),

		HTTPRequestsTotal: counter("http_requests_total", "HTTP requests by route and status", "method", "path", "status"),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Breaker state per broker publisher",
		}, []string{"name"}),
	}
}
