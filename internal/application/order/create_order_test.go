package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appOrder "github.com/cassiomorais/gozon/internal/application/order"
	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/cassiomorais/gozon/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_WritesOrderAndOutboxAtomically(t *testing.T) {
	store := testutil.NewStore()
	uc := appOrder.NewCreateOrderUseCase(store.Orders, store.Outbox, store.Tx, nil)

	o, err := uc.Execute(context.Background(), appOrder.CreateOrderRequest{UserID: "u1", Price: 150})
	require.NoError(t, err)
	assert.Equal(t, order.StatusNew, o.Status)

	stored, err := store.Orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), stored.Price)

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, events.TypePaymentRequested, msgs[0].Type)
	assert.Nil(t, msgs[0].PublishedAt)

	req, err := events.DecodePaymentRequested(msgs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, msgs[0].ID, req.MessageID)
	assert.Equal(t, o.ID, req.OrderID)
	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, int64(150), req.Price)
}

func TestCreateOrder_OutboxFailureRollsBackOrder(t *testing.T) {
	store := testutil.NewStore()
	store.Outbox.InsertFunc = func(ctx context.Context, msg *outbox.Message) error {
		return errors.New("disk full")
	}
	uc := appOrder.NewCreateOrderUseCase(store.Orders, store.Outbox, store.Tx, nil)

	_, err := uc.Execute(context.Background(), appOrder.CreateOrderRequest{UserID: "u1", Price: 150})
	require.Error(t, err)

	orders, err := store.Orders.ListByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, store.Rollbacks)
}

func TestCreateOrder_Validation(t *testing.T) {
	store := testutil.NewStore()
	uc := appOrder.NewCreateOrderUseCase(store.Orders, store.Outbox, store.Tx, nil)

	_, err := uc.Execute(context.Background(), appOrder.CreateOrderRequest{UserID: "u1", Price: 0})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidPrice)

	_, err = uc.Execute(context.Background(), appOrder.CreateOrderRequest{UserID: "", Price: 10})
	assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)

	assert.Empty(t, store.OutboxMessages())
	assert.Zero(t, store.Commits)
}

func TestListOrders_NewestFirst(t *testing.T) {
	store := testutil.NewStore()
	first := testutil.SeedOrder(t, store, "u1", 10)
	second := testutil.SeedOrder(t, store, "u1", 20)
	testutil.SeedOrder(t, store, "u2", 30)

	// force a deterministic order regardless of clock resolution
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Orders.Create(context.Background(), first))

	orders, err := appOrder.NewListOrdersUseCase(store.Orders).Execute(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	_, err = appOrder.NewListOrdersUseCase(store.Orders).Execute(context.Background(), "")
	assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)
}

func TestGetOrder(t *testing.T) {
	store := testutil.NewStore()
	o := testutil.SeedOrder(t, store, "u1", 10)
	uc := appOrder.NewGetOrderUseCase(store.Orders)

	got, err := uc.Execute(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = uc.Execute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainErrors.ErrOrderNotFound)
}
