package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert appends a message (inside the caller's business transaction)
	Insert(ctx context.Context, msg *Message) error

	// Claim leases up to limit claimable messages, oldest first, stamping
	// leaseExpiry = leaseUntil and attempt += 1. The claim commits on return.
	Claim(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*Message, error)

	// MarkPublished sets publishedAt and clears the lease for all ids in one write
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error

	// Stats counts unpublished messages and those currently leased
	Stats(ctx context.Context, now time.Time) (Stats, error)
}
