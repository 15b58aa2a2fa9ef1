package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cassiomorais/gozon/internal/application/inbox"
	orderApp "github.com/cassiomorais/gozon/internal/application/order"
	appOutbox "github.com/cassiomorais/gozon/internal/application/outbox"
	"github.com/cassiomorais/gozon/internal/bootstrap"
	"github.com/cassiomorais/gozon/internal/controller"
	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/rabbitmq"
	infraRedis "github.com/cassiomorais/gozon/internal/infrastructure/redis"
	"github.com/cassiomorais/gozon/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, config.ServiceOrders)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Use cases ---
	createOrderUC := orderApp.NewCreateOrderUseCase(orderRepo, outboxRepo, txManager, app.Metrics)
	getOrderUC := orderApp.NewGetOrderUseCase(orderRepo)
	listOrdersUC := orderApp.NewListOrdersUseCase(orderRepo)
	settlement := orderApp.NewSettlementHandler(
		inbox.NewGuard(txManager, inboxRepo),
		orderRepo,
		infraRedis.NewNotifier(app.Redis),
		app.Logger,
		app.Metrics,
	)

	// --- Messaging ---
	publisher := rabbitmq.NewPublisher(app.Broker, app.Config.RabbitMQ.Exchange)
	defer publisher.Close()
	relay := appOutbox.NewRelay(outboxRepo, publisher, app.RelayConfig(), app.Logger, app.Metrics)
	consumer := rabbitmq.NewConsumer(app.Broker, app.ConsumerConfig(rabbitmq.QueuePaymentResults), settlement, app.Logger, app.Metrics)

	// --- HTTP ---
	router := controller.NewOrdersRouter(app.RouterDeps(), controller.OrdersRoutes{
		Orders: controller.NewOrderController(createOrderUC, getOrderUC, listOrdersUC),
	})

	if err := app.Run(ctx, app.Server(router), relay.Run, consumer.Run); err != nil {
		app.Logger.Error().Err(err).Msg("Orders service failed")
	}
}
