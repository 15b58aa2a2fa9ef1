package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("orders", reg)

	m.OutboxPublished.WithLabelValues("PaymentRequested", "ok").Inc()
	m.OrdersSettled.WithLabelValues("FINISHED").Add(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxPublished.WithLabelValues("PaymentRequested", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OrdersSettled.WithLabelValues("FINISHED")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["orders_outbox_publish_total"])
	assert.True(t, names["orders_orders_settled_total"])
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics("payments", reg)

	assert.Panics(t, func() { NewMetrics("payments", reg) })
}

func TestInitLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, "shown")
}
