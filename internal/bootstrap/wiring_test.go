package bootstrap

import (
	"testing"
	"time"

	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/rabbitmq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiringFromConfig(t *testing.T) {
	cfg, err := config.Load(config.ServicePayments)
	require.NoError(t, err)
	cfg.InstanceID = "pod-1"
	cfg.Consumer.PoisonPolicy = config.PoisonPolicyDeadLetter
	app := &App{Config: cfg}

	relay := app.RelayConfig()
	assert.Equal(t, 500*time.Millisecond, relay.PollInterval)
	assert.Equal(t, 20, relay.BatchSize)
	assert.Equal(t, 10*time.Second, relay.LeaseDuration)
	assert.Less(t, relay.PublishTimeout, relay.LeaseDuration)

	consumer := app.ConsumerConfig(rabbitmq.QueuePaymentRequests)
	assert.Equal(t, rabbitmq.QueuePaymentRequests, consumer.Queue)
	assert.Equal(t, "payments-pod-1", consumer.Tag)
	assert.Equal(t, 16, consumer.Prefetch)
	assert.Equal(t, 30*time.Second, consumer.HandlerTimeout)
	assert.Equal(t, config.PoisonPolicyDeadLetter, consumer.PoisonPolicy)
}
