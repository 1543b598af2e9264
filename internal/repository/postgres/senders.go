package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/jackc/pgx/v5"
)

// FindSender prefers an eligible sender when the name is registered twice.
func (p *Postgres) FindSender(ctx context.Context, accountID int64,
	channel types.Channel, name string) (types.Sender, error) {

	sender := types.Sender{AccountID: accountID, Channel: channel, Name: name}

	err := p.pg.QueryRow(ctx, `
		SELECT id, available, status = 1
		FROM senders
		WHERE account_id = $1 AND channel = $2 AND name = $3
		ORDER BY (available AND status = 1) DESC, id
		LIMIT 1
	`, accountID, int(channel), name).Scan(&sender.ID, &sender.Available, &sender.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Sender{}, repository.ErrNotFound
	}
	if err != nil {
		return types.Sender{}, fmt.Errorf("find sender: %w", err)
	}

	return sender, nil
}
