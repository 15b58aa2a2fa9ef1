package bootstrap

import (
	"fmt"

	appOutbox "github.com/cassiomorais/gozon/internal/application/outbox"
	"github.com/cassiomorais/gozon/internal/infrastructure/rabbitmq"
)

// RelayConfig maps the outbox section of the config onto the relay.
func (a *App) RelayConfig() appOutbox.Config {
	c := a.Config.Outbox
	return appOutbox.Config{
		PollInterval:    c.PollInterval,
		BatchSize:       c.BatchSize,
		LeaseDuration:   c.LeaseDuration,
		PublishTimeout:  c.PublishTimeout,
		BreakerFailures: c.BreakerFailures,
		BreakerTimeout:  c.BreakerTimeout,
	}
}

// ConsumerConfig maps the consumer section of the config onto a consumer of queue.
func (a *App) ConsumerConfig(queue string) rabbitmq.ConsumerConfig {
	c := a.Config.Consumer
	return rabbitmq.ConsumerConfig{
		Queue:          queue,
		Tag:            fmt.Sprintf("%s-%s", a.Config.Service, a.Config.InstanceID),
		Prefetch:       c.Prefetch,
		HandlerTimeout: c.HandlerTimeout,
		PoisonPolicy:   c.PoisonPolicy,
	}
}
