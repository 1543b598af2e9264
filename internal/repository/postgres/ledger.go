package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Debit locks the account row for the whole read-check-write sequence, so
// debits of one account are applied one after another.
func (p *Postgres) Debit(ctx context.Context, debit types.Debit) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = debitTx(ctx, tx, debit)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func debitTx(ctx context.Context, tx pgx.Tx, debit types.Debit) (decimal.Decimal, error) {
	var (
		balance    decimal.Decimal
		currencyID int64
	)

	err := tx.QueryRow(ctx, `
		SELECT balance, currency_id
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, debit.AccountID).Scan(&balance, &currencyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock account: %w", err)
	}

	next := balance.Sub(debit.Amount)
	if next.IsNegative() {
		return decimal.Zero, repository.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, next, debit.AccountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payment_history (account_id, credit, currency_id, description)
		VALUES ($1, $2, $3, $4)
	`, debit.AccountID, debit.Amount, currencyID, debit.Description)
	if err != nil {
		return decimal.Zero, fmt.Errorf("insert payment history: %w", err)
	}

	return next, nil
}
