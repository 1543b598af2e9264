package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/jackc/pgx/v5"
)

func (p *Postgres) AccountTariff(ctx context.Context, accountID int64,
	channel types.Channel) (types.Tariff, error) {

	tariff := types.Tariff{AccountID: accountID, Channel: channel}

	err := p.pg.QueryRow(ctx, `
		SELECT t.id, t.price
		FROM account_tariffs at
		JOIN tariffs t ON t.id = at.tariff_id
		WHERE at.account_id = $1 AND at.channel = $2
	`, accountID, int(channel)).Scan(&tariff.ID, &tariff.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Tariff{}, repository.ErrNotFound
	}
	if err != nil {
		return types.Tariff{}, fmt.Errorf("get tariff: %w", err)
	}

	return tariff, nil
}

// AttachTariff relies on the (account_id, channel) primary key, so concurrent
// first uses end up with one row.
func (p *Postgres) AttachTariff(ctx context.Context, accountID int64,
	channel types.Channel, tariffID int64) error {

	tag, err := p.pg.Exec(ctx, `
		INSERT INTO account_tariffs (account_id, channel, tariff_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, channel) DO NOTHING
	`, accountID, int(channel), tariffID)
	if err != nil {
		return fmt.Errorf("attach tariff: %w", err)
	}

	if tag.RowsAffected() == 0 {
		p.log.Debug("tariff already attached", "account", accountID, "channel", channel.String())
	}

	return nil
}
