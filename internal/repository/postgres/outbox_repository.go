package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/cassiomorais/gozon/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *OutboxRepository) Insert(ctx context.Context, msg *outbox.Message) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO outbox_messages (id, type, payload, created_at, attempt)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, string(msg.Type), msg.Payload, msg.CreatedAt, msg.Attempt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// Claim leases claimable rows in a single statement so the lease commits
// before anything is published. Rows locked by another publisher are skipped.
func (r *OutboxRepository) Claim(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*outbox.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db(ctx).Query(ctx,
		`WITH claimable AS (
			SELECT id FROM outbox_messages
			WHERE published_at IS NULL AND (lease_expiry IS NULL OR lease_expiry < $1)
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_messages o
		SET lease_expiry = $2, attempt = o.attempt + 1
		FROM claimable c
		WHERE o.id = c.id
		RETURNING o.id, o.type, o.payload, o.created_at, o.lease_expiry, o.published_at, o.attempt`,
		now, leaseUntil, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	defer rows.Close()

	var msgs []*outbox.Message
	for rows.Next() {
		m := &outbox.Message{}
		var typ string
		if err := rows.Scan(&m.ID, &typ, &m.Payload, &m.CreatedAt, &m.LeaseExpiry, &m.PublishedAt, &m.Attempt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		m.Type = events.Type(typ)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}

	// RETURNING does not preserve the CTE order.
	slices.SortFunc(msgs, func(a, b *outbox.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return msgs, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db(ctx).Exec(ctx,
		`UPDATE outbox_messages SET published_at = $1, lease_expiry = NULL
		 WHERE id = ANY($2) AND published_at IS NULL`,
		at, pgtype.FlatArray[uuid.UUID](ids),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func (r *OutboxRepository) Stats(ctx context.Context, now time.Time) (outbox.Stats, error) {
	var s outbox.Stats
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE lease_expiry IS NOT NULL AND lease_expiry >= $1)
		 FROM outbox_messages WHERE published_at IS NULL`, now,
	).Scan(&s.Pending, &s.Leased)
	if err != nil {
		return outbox.Stats{}, fmt.Errorf("outbox stats: %w", err)
	}
	return s, nil
}
