package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository records consumed message ids.
type Repository interface {
	// TryInsert records id and reports whether it was new.
	// It must run inside the transaction that applies the message's effects.
	TryInsert(ctx context.Context, id uuid.UUID, receivedAt time.Time) (bool, error)
}
