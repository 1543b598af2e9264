package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/jackc/pgx/v5"
)

func (p *Postgres) Account(ctx context.Context, id int64) (types.Account, error) {
	var acc types.Account

	err := p.pg.QueryRow(ctx, `
		SELECT id, balance, currency_id
		FROM accounts
		WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Balance, &acc.CurrencyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Account{}, repository.ErrNotFound
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}

	return acc, nil
}
