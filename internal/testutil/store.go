package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/account"
	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/cassiomorais/gozon/internal/domain/order"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/cassiomorais/gozon/internal/domain/payment"
	"github.com/google/uuid"
)

type txKey struct{}

// Store is an in-memory database for one service. A transaction holds the
// store lock until it finishes and restores a snapshot when it fails, so
// repositories behave like they would inside a serializable transaction.
type Store struct {
	mu sync.Mutex

	orders   map[uuid.UUID]order.Order
	accounts map[string]account.Account
	payments map[uuid.UUID]payment.Payment // by order id
	outbox   map[uuid.UUID]outbox.Message
	inbox    map[uuid.UUID]time.Time

	Commits   int
	Rollbacks int

	Tx       *TxManager
	Orders   *OrderRepository
	Accounts *AccountRepository
	Payments *PaymentRepository
	Outbox   *OutboxRepository
	Inbox    *InboxRepository
}

func NewStore() *Store {
	s := &Store{
		orders:   make(map[uuid.UUID]order.Order),
		accounts: make(map[string]account.Account),
		payments: make(map[uuid.UUID]payment.Payment),
		outbox:   make(map[uuid.UUID]outbox.Message),
		inbox:    make(map[uuid.UUID]time.Time),
	}
	s.Tx = &TxManager{s: s}
	s.Orders = &OrderRepository{s: s}
	s.Accounts = &AccountRepository{s: s}
	s.Payments = &PaymentRepository{s: s}
	s.Outbox = &OutboxRepository{s: s}
	s.Inbox = &InboxRepository{s: s}
	return s
}

type snapshot struct {
	orders   map[uuid.UUID]order.Order
	accounts map[string]account.Account
	payments map[uuid.UUID]payment.Payment
	outbox   map[uuid.UUID]outbox.Message
	inbox    map[uuid.UUID]time.Time
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		orders:   maps.Clone(s.orders),
		accounts: maps.Clone(s.accounts),
		payments: maps.Clone(s.payments),
		outbox:   maps.Clone(s.outbox),
		inbox:    maps.Clone(s.inbox),
	}
}

func (s *Store) restore(snap snapshot) {
	s.orders = snap.orders
	s.accounts = snap.accounts
	s.payments = snap.payments
	s.outbox = snap.outbox
	s.inbox = snap.inbox
}

// do runs fn under the store lock unless ctx already belongs to a transaction.
func (s *Store) do(ctx context.Context, fn func()) {
	if ctx.Value(txKey{}) == s {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// --- Transactions ---

// TxManager implements the transaction manager port over a Store.
type TxManager struct {
	s *Store

	// BeginErr, when set, is returned before fn runs.
	BeginErr error
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	if ctx.Value(txKey{}) == m.s {
		return fn(ctx)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snap := m.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, m.s)); err != nil {
		m.s.restore(snap)
		m.s.Rollbacks++
		return err
	}
	m.s.Commits++
	return nil
}

// --- Orders ---

type OrderRepository struct {
	s *Store

	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SettleIfNewFunc func(ctx context.Context, id uuid.UUID, status order.Status) (bool, error)
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.s.do(ctx, func() { r.s.orders[o.ID] = *o })
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if r.GetByIDFunc != nil {
		return r.GetByIDFunc(ctx, id)
	}
	var (
		o  order.Order
		ok bool
	)
	r.s.do(ctx, func() { o, ok = r.s.orders[id] })
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return &o, nil
}

func (r *OrderRepository) ListByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	var result []*order.Order
	r.s.do(ctx, func() {
		for _, o := range r.s.orders {
			if o.UserID == userID {
				result = append(result, &o)
			}
		}
	})
	slices.SortFunc(result, func(a, b *order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

func (r *OrderRepository) SettleIfNew(ctx context.Context, id uuid.UUID, status order.Status) (bool, error) {
	if r.SettleIfNewFunc != nil {
		return r.SettleIfNewFunc(ctx, id, status)
	}
	if !status.IsTerminal() {
		return false, domainErrors.ErrInvalidStateTransition
	}
	changed := false
	r.s.do(ctx, func() {
		o, ok := r.s.orders[id]
		if !ok || o.Status != order.StatusNew {
			return
		}
		o.Status = status
		o.UpdatedAt = time.Now().UTC()
		r.s.orders[id] = o
		changed = true
	})
	return changed, nil
}

// --- Accounts ---

type AccountRepository struct {
	s *Store

	LockByUserIDFunc func(ctx context.Context, userID string) (*account.Account, error)
	UpdateFunc       func(ctx context.Context, a *account.Account) error
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	var err error
	r.s.do(ctx, func() {
		if _, exists := r.s.accounts[a.UserID]; exists {
			err = domainErrors.ErrAccountAlreadyExists
			return
		}
		r.s.accounts[a.UserID] = *a
	})
	return err
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*account.Account, error) {
	var (
		a  account.Account
		ok bool
	)
	r.s.do(ctx, func() { a, ok = r.s.accounts[userID] })
	if !ok {
		return nil, domainErrors.ErrAccountNotFound
	}
	return &a, nil
}

func (r *AccountRepository) LockByUserID(ctx context.Context, userID string) (*account.Account, error) {
	if r.LockByUserIDFunc != nil {
		return r.LockByUserIDFunc(ctx, userID)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, a)
	}
	var err error
	r.s.do(ctx, func() {
		stored, ok := r.s.accounts[a.UserID]
		if !ok || stored.ID != a.ID || stored.Version != a.Version-1 {
			err = domainErrors.ErrOptimisticLockFailed
			return
		}
		r.s.accounts[a.UserID] = *a
	})
	return err
}

// --- Payments ---

type PaymentRepository struct {
	s *Store

	ExistsForOrderFunc func(ctx context.Context, orderID uuid.UUID) (bool, error)
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	var err error
	r.s.do(ctx, func() {
		if _, exists := r.s.payments[p.OrderID]; exists {
			err = domainErrors.ErrPaymentAlreadyExists
			return
		}
		r.s.payments[p.OrderID] = *p
	})
	return err
}

func (r *PaymentRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	if r.ExistsForOrderFunc != nil {
		return r.ExistsForOrderFunc(ctx, orderID)
	}
	var ok bool
	r.s.do(ctx, func() { _, ok = r.s.payments[orderID] })
	return ok, nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	var (
		p  payment.Payment
		ok bool
	)
	r.s.do(ctx, func() { p, ok = r.s.payments[orderID] })
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return &p, nil
}

// --- Outbox ---

type OutboxRepository struct {
	s *Store

	InsertFunc        func(ctx context.Context, msg *outbox.Message) error
	ClaimFunc         func(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*outbox.Message, error)
	MarkPublishedFunc func(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

func (r *OutboxRepository) Insert(ctx context.Context, msg *outbox.Message) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, msg)
	}
	r.s.do(ctx, func() { r.s.outbox[msg.ID] = *msg })
	return nil
}

func (r *OutboxRepository) Claim(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*outbox.Message, error) {
	if r.ClaimFunc != nil {
		return r.ClaimFunc(ctx, now, leaseUntil, limit)
	}
	var claimed []*outbox.Message
	r.s.do(ctx, func() {
		var candidates []outbox.Message
		for _, m := range r.s.outbox {
			if m.Claimable(now) {
				candidates = append(candidates, m)
			}
		}
		slices.SortFunc(candidates, func(a, b outbox.Message) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		for _, m := range candidates {
			m.Lease(leaseUntil)
			r.s.outbox[m.ID] = m
			claimed = append(claimed, &m)
		}
	})
	return claimed, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if r.MarkPublishedFunc != nil {
		return r.MarkPublishedFunc(ctx, ids, at)
	}
	r.s.do(ctx, func() {
		for _, id := range ids {
			m, ok := r.s.outbox[id]
			if !ok || m.IsPublished() {
				continue
			}
			m.MarkPublished(at)
			r.s.outbox[id] = m
		}
	})
	return nil
}

func (r *OutboxRepository) Stats(ctx context.Context, now time.Time) (outbox.Stats, error) {
	var st outbox.Stats
	r.s.do(ctx, func() {
		for _, m := range r.s.outbox {
			if m.IsPublished() {
				continue
			}
			st.Pending++
			if m.LeaseExpiry != nil && !m.LeaseExpiry.Before(now) {
				st.Leased++
			}
		}
	})
	return st, nil
}

// --- Inbox ---

type InboxRepository struct {
	s *Store

	TryInsertFunc func(ctx context.Context, id uuid.UUID, receivedAt time.Time) (bool, error)
}

func (r *InboxRepository) TryInsert(ctx context.Context, id uuid.UUID, receivedAt time.Time) (bool, error) {
	if r.TryInsertFunc != nil {
		return r.TryInsertFunc(ctx, id, receivedAt)
	}
	inserted := false
	r.s.do(ctx, func() {
		if _, exists := r.s.inbox[id]; exists {
			return
		}
		r.s.inbox[id] = receivedAt
		inserted = true
	})
	return inserted, nil
}

// --- Assertions helpers ---

// OutboxMessages returns all outbox rows, oldest first.
func (s *Store) OutboxMessages() []outbox.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := slices.Collect(maps.Values(s.outbox))
	slices.SortFunc(msgs, func(a, b outbox.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return msgs
}

// InboxSize returns the number of recorded inbox ids.
func (s *Store) InboxSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inbox)
}

// PaymentCount returns the number of recorded payments.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}
