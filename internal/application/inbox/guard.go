// Package inbox makes message consumers idempotent: a message id is recorded
// in the same transaction that applies the message, and a second delivery of
// the same id is a no-op.
package inbox

import (
	"context"
	"fmt"
	"time"

	domainInbox "github.com/cassiomorais/gozon/internal/domain/inbox"
	"github.com/google/uuid"
)

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Guard runs message effects at most once per message id.
type Guard struct {
	tx    TransactionManager
	repo  domainInbox.Repository
	clock func() time.Time
}

func NewGuard(tx TransactionManager, repo domainInbox.Repository) *Guard {
	return &Guard{
		tx:    tx,
		repo:  repo,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// Process records messageID and runs fn in one transaction.
// It returns applied=false without calling fn when the id was seen before.
// An error from fn rolls back the inbox row together with fn's writes.
func (g *Guard) Process(ctx context.Context, messageID uuid.UUID, fn func(ctx context.Context) error) (bool, error) {
	applied := false
	err := g.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		inserted, err := g.repo.TryInsert(txCtx, messageID, g.clock())
		if err != nil {
			return fmt.Errorf("record inbox message: %w", err)
		}
		if !inserted {
			return nil
		}
		if err := fn(txCtx); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
