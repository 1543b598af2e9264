package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/jackc/pgx/v5"
)

func (p *Postgres) DispatchState(ctx context.Context, accountID int64,
	channel types.Channel, dispatchID int64) (types.DispatchState, error) {

	state := types.DispatchState{ID: dispatchID}
	var status int

	err := p.pg.QueryRow(ctx, `
		SELECT d.name, d.paused, COALESCE(t.send_status, $4)
		FROM dispatches d
		LEFT JOIN turns t ON t.dispatch_id = d.id
		WHERE d.id = $1 AND d.account_id = $2 AND d.channel = $3
	`, dispatchID, accountID, int(channel), int(types.SendStatusWait)).
		Scan(&state.Name, &state.Paused, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.DispatchState{}, repository.ErrNotFound
	}
	if err != nil {
		return types.DispatchState{}, fmt.Errorf("get dispatch state: %w", err)
	}

	state.SendStatus = types.SendStatus(status)

	return state, nil
}

const detailsSQL = `
	SELECT d.recipient, ROUND(d.price, 4), s.name, d.status, ds.name
	FROM details d
	LEFT JOIN detail_statuses ds ON d.status = ds.api_id AND ds.type = $3
	LEFT JOIN senders s ON d.sender_id = s.id
	WHERE d.dispatch_id = $1 AND d.account_id = $2 AND d.type = $3`

// DispatchDetails lists the per recipient rows of a dispatch. With
// terminalOnly only delivered and undelivered rows are returned.
func (p *Postgres) DispatchDetails(ctx context.Context, accountID int64,
	channel types.Channel, dispatchID int64, terminalOnly bool) ([]types.StatDetail, error) {

	query := detailsSQL
	if terminalOnly {
		query += ` AND d.status IN (2, 3)`
	}
	query += ` ORDER BY d.id`

	rows, err := p.pg.Query(ctx, query, dispatchID, accountID, int(channel))
	if err != nil {
		return nil, fmt.Errorf("query details: %w", err)
	}
	defer rows.Close()

	details := []types.StatDetail{}
	for rows.Next() {
		var d types.StatDetail
		err := rows.Scan(&d.Recipient, &d.Price, &d.Sender, &d.StatusID, &d.StatusName)
		if err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read details: %w", err)
	}

	return details, nil
}
