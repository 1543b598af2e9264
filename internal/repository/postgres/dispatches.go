package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/openbuilders/campaign-api/internal/repository/postgres/model"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var insertDispatchSQL = buildInsertDispatchSQL()

func buildInsertDispatchSQL() string {
	placeholders := make([]string, len(model.Columns))
	for i := range model.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO dispatches (%s) VALUES (%s) RETURNING id",
		strings.Join(model.Columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// CreateDispatch stores the dispatch, its Wait turn and the outbox event that
// announces it to the send worker.
func (p *Postgres) CreateDispatch(ctx context.Context, d *types.Dispatch) (int64, error) {
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		return insertDispatchTx(ctx, tx, d)
	})
	if err != nil {
		return 0, err
	}

	return d.ID, nil
}

// CreateDispatchAndDebit is CreateDispatch and Debit in a single transaction.
func (p *Postgres) CreateDispatchAndDebit(ctx context.Context, d *types.Dispatch,
	debit types.Debit) (int64, decimal.Decimal, error) {

	var balance decimal.Decimal

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if err := insertDispatchTx(ctx, tx, d); err != nil {
			return err
		}

		var err error
		balance, err = debitTx(ctx, tx, debit)
		return err
	})
	if err != nil {
		return 0, decimal.Zero, err
	}

	return d.ID, balance, nil
}

func insertDispatchTx(ctx context.Context, tx pgx.Tx, d *types.Dispatch) error {
	row, err := model.FromDispatch(d)
	if err != nil {
		return fmt.Errorf("encode dispatch: %w", err)
	}

	err = tx.QueryRow(ctx, insertDispatchSQL, row.Args()...).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO turns (dispatch_id, send_status)
		VALUES ($1, $2)
	`, d.ID, int(types.SendStatusWait))
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (id, dispatch_id, channel, status)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), d.ID, int(d.Channel), string(types.OutboxPending))
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return nil
}
