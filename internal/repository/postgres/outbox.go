package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/google/uuid"
)

const outboxLease = 30 * time.Second

// ClaimOutbox leases up to limit pending events. Rows locked by another relay
// are skipped; a leased row becomes visible again once the lease expires
// without being marked as published.
func (p *Postgres) ClaimOutbox(ctx context.Context, limit int) ([]types.OutboxEvent, error) {
	rows, err := p.pg.Query(ctx, `
		WITH cte AS (
			SELECT id
			FROM outbox
			WHERE status = $1 AND available_at <= NOW()
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox o
		SET available_at = NOW() + ($3 * INTERVAL '1 second')
		FROM cte
		WHERE o.id = cte.id
		RETURNING o.id, o.dispatch_id, o.channel, o.created_at
	`, string(types.OutboxPending), limit, int(outboxLease/time.Second))
	if err != nil {
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	defer rows.Close()

	var events []types.OutboxEvent
	for rows.Next() {
		var (
			e       types.OutboxEvent
			channel int
		)
		if err := rows.Scan(&e.ID, &e.DispatchID, &channel, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Channel = types.Channel(channel)
		e.Status = types.OutboxPending
		events = append(events, e)
	}

	return events, rows.Err()
}

func (p *Postgres) MarkOutboxPublished(ctx context.Context, ids []uuid.UUID) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	_, err := p.pg.Exec(ctx, `
		UPDATE outbox
		SET status = $1, published_at = NOW()
		WHERE id = ANY($2::uuid[])
	`, string(types.OutboxPublished), strIDs)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}

	return nil
}
