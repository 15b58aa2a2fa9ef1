package main

import (
	"context"
	"fmt"
	"os"

	accountApp "github.com/cassiomorais/gozon/internal/application/account"
	"github.com/cassiomorais/gozon/internal/application/inbox"
	appOutbox "github.com/cassiomorais/gozon/internal/application/outbox"
	paymentApp "github.com/cassiomorais/gozon/internal/application/payment"
	"github.com/cassiomorais/gozon/internal/bootstrap"
	"github.com/cassiomorais/gozon/internal/controller"
	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/rabbitmq"
	"github.com/cassiomorais/gozon/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, config.ServicePayments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	accountRepo := postgres.NewAccountRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Use cases ---
	createAccountUC := accountApp.NewCreateAccountUseCase(accountRepo)
	topUpUC := accountApp.NewTopUpUseCase(accountRepo, txManager)
	getBalanceUC := accountApp.NewGetBalanceUseCase(accountRepo)
	saga := paymentApp.NewSagaHandler(
		inbox.NewGuard(txManager, inboxRepo),
		paymentRepo,
		accountRepo,
		outboxRepo,
		app.Logger,
		app.Metrics,
	)

	// --- Messaging ---
	publisher := rabbitmq.NewPublisher(app.Broker, app.Config.RabbitMQ.Exchange)
	defer publisher.Close()
	relay := appOutbox.NewRelay(outboxRepo, publisher, app.RelayConfig(), app.Logger, app.Metrics)
	consumer := rabbitmq.NewConsumer(app.Broker, app.ConsumerConfig(rabbitmq.QueuePaymentRequests), saga, app.Logger, app.Metrics)

	// --- HTTP ---
	router := controller.NewPaymentsRouter(app.RouterDeps(), controller.PaymentsRoutes{
		Accounts: controller.NewAccountController(createAccountUC, topUpUC, getBalanceUC),
	})

	if err := app.Run(ctx, app.Server(router), relay.Run, consumer.Run); err != nil {
		app.Logger.Error().Err(err).Msg("Payments service failed")
	}
}
