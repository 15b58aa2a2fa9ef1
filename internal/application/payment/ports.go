package payment

import (
	"context"

	"github.com/google/uuid"
)

// InboxGuard runs fn at most once per message id, inside one transaction.
type InboxGuard interface {
	Process(ctx context.Context, messageID uuid.UUID, fn func(ctx context.Context) error) (bool, error)
}
