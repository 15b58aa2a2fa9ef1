package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	accountApp "github.com/cassiomorais/gozon/internal/application/account"
	orderApp "github.com/cassiomorais/gozon/internal/application/order"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/cassiomorais/gozon/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(t *testing.T) RouterDeps {
	t.Helper()
	reg := prometheus.NewRegistry()
	return RouterDeps{
		Service:  "test",
		Server:   config.ServerConfig{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}},
		Logger:   zerolog.Nop(),
		Metrics:  observability.NewMetrics("test", reg),
		Gatherer: reg,
		Health:   NewHealthController(),
	}
}

func newOrdersRouter(t *testing.T, store *testutil.Store) *chi.Mux {
	t.Helper()
	deps := testDeps(t)
	return NewOrdersRouter(deps, OrdersRoutes{Orders: NewOrderController(
		orderApp.NewCreateOrderUseCase(store.Orders, store.Outbox, store.Tx, deps.Metrics),
		orderApp.NewGetOrderUseCase(store.Orders),
		orderApp.NewListOrdersUseCase(store.Orders),
	)})
}

func newPaymentsRouter(t *testing.T, store *testutil.Store) *chi.Mux {
	t.Helper()
	return NewPaymentsRouter(testDeps(t), PaymentsRoutes{Accounts: NewAccountController(
		accountApp.NewCreateAccountUseCase(store.Accounts),
		accountApp.NewTopUpUseCase(store.Accounts, store.Tx),
		accountApp.NewGetBalanceUseCase(store.Accounts),
	)})
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOrdersAPI_CreateAndRead(t *testing.T) {
	store := testutil.NewStore()
	r := newOrdersRouter(t, store)

	rec := do(r, http.MethodPost, "/orders/api/orders", `{"userId":"u1","price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "NEW", created.Status)
	assert.Len(t, store.OutboxMessages(), 1)

	rec = do(r, http.MethodGet, "/orders/api/orders/"+created.OrderID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.OrderID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, int64(100), got.Price)

	rec = do(r, http.MethodGet, "/orders/api/orders?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(r, http.MethodGet, "/orders/api/orders?userId=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestOrdersAPI_Errors(t *testing.T) {
	store := testutil.NewStore()
	r := newOrdersRouter(t, store)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"missing user", http.MethodPost, "/orders/api/orders", `{"price":100}`, http.StatusBadRequest, "validation_error"},
		{"zero price", http.MethodPost, "/orders/api/orders", `{"userId":"u1","price":0}`, http.StatusBadRequest, "validation_error"},
		{"bad json", http.MethodPost, "/orders/api/orders", `{"userId":`, http.StatusBadRequest, "validation_error"},
		{"unknown field", http.MethodPost, "/orders/api/orders", `{"userId":"u1","price":1,"coupon":"x"}`, http.StatusBadRequest, "validation_error"},
		{"list without user", http.MethodGet, "/orders/api/orders", "", http.StatusBadRequest, "validation_error"},
		{"bad id", http.MethodGet, "/orders/api/orders/not-a-uuid", "", http.StatusBadRequest, "invalid_id"},
		{"unknown id", http.MethodGet, "/orders/api/orders/" + uuid.NewString(), "", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
	assert.Empty(t, store.OutboxMessages())
}

func TestOrdersAPI_ListShowsSettledStatus(t *testing.T) {
	store := testutil.NewStore()
	o := testutil.SeedOrder(t, store, "u1", 10)
	_, err := store.Orders.SettleIfNew(context.Background(), o.ID, order.StatusCancelled)
	require.NoError(t, err)

	rec := do(newOrdersRouter(t, store), http.MethodGet, "/orders/api/orders?userId=u1", "")
	var list []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "CANCELLED", list[0].Status)
}

func TestPaymentsAPI_AccountLifecycle(t *testing.T) {
	store := testutil.NewStore()
	r := newPaymentsRouter(t, store)

	rec := do(r, http.MethodPost, "/payments/api/account", `{"userId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"userId":"u1"}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/payments/api/account", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/payments/api/account/topup", `{"userId":"u1","amount":150}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"u1","balance":150}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/payments/api/account/balance?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"u1","balance":150}`, rec.Body.String())
}

func TestPaymentsAPI_Errors(t *testing.T) {
	r := newPaymentsRouter(t, testutil.NewStore())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"top up missing account", http.MethodPost, "/payments/api/account/topup", `{"userId":"ghost","amount":10}`, http.StatusNotFound},
		{"top up zero", http.MethodPost, "/payments/api/account/topup", `{"userId":"u1","amount":0}`, http.StatusBadRequest},
		{"create without user", http.MethodPost, "/payments/api/account", `{}`, http.StatusBadRequest},
		{"balance missing account", http.MethodGet, "/payments/api/account/balance?userId=ghost", "", http.StatusNotFound},
		{"balance without user", http.MethodGet, "/payments/api/account/balance", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, tt.method, tt.target, tt.body).Code)
		})
	}
}

func TestHealth(t *testing.T) {
	store := testutil.NewStore()
	deps := testDeps(t)

	deps.Health = NewHealthController(
		Check{Name: "database", Ping: func(ctx context.Context) error { return nil }},
		Check{Name: "broker", Ping: func(ctx context.Context) error { return errors.New("connection closed") }},
	)
	r := NewPaymentsRouter(deps, PaymentsRoutes{Accounts: NewAccountController(
		accountApp.NewCreateAccountUseCase(store.Accounts), nil, nil)})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/live", "").Code)

	rec := do(r, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready","reason":"broker unavailable"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(newOrdersRouter(t, store), http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newOrdersRouter(t, testutil.NewStore())
	do(r, http.MethodPost, "/orders/api/orders", `{"userId":"u1","price":5}`)

	rec := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_orders_created_total 1")
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}
