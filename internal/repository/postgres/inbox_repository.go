package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InboxRepository implements inbox.Repository using PostgreSQL.
type InboxRepository struct {
	pool *pgxpool.Pool
}

func NewInboxRepository(pool *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{pool: pool}
}

func (r *InboxRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// TryInsert records a consumed message id. It returns false when the id was already present.
func (r *InboxRepository) TryInsert(ctx context.Context, id uuid.UUID, receivedAt time.Time) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO inbox_messages (id, received_at) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		id, receivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert inbox message: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
