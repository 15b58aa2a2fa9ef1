package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/account"
	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/stretchr/testify/require"
)

// SeedAccount stores an account with the given balance.
func SeedAccount(t *testing.T, s *Store, userID string, balance int64) *account.Account {
	t.Helper()
	a, err := account.NewAccount(userID, balance)
	require.NoError(t, err)
	require.NoError(t, s.Accounts.Create(context.Background(), a))
	return a
}

// SeedOrder stores a NEW order.
func SeedOrder(t *testing.T, s *Store, userID string, price int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(userID, price)
	require.NoError(t, err)
	require.NoError(t, s.Orders.Create(context.Background(), o))
	return o
}

// Balance returns the user's current balance, failing the test if there is no account.
func Balance(t *testing.T, s *Store, userID string) int64 {
	t.Helper()
	a, err := s.Accounts.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return a.Balance
}

// PaymentRequestedBody encodes a PaymentRequested event.
func PaymentRequestedBody(t *testing.T, e events.PaymentRequested) []byte {
	t.Helper()
	body, err := events.Encode(e)
	require.NoError(t, err)
	return body
}

// PaymentResultBody encodes a PaymentResult event.
func PaymentResultBody(t *testing.T, e events.PaymentResult) []byte {
	t.Helper()
	body, err := events.Encode(e)
	require.NoError(t, err)
	return body
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func StrPtr(s string) *string {
	return &s
}
