package postgres

import (
	"context"
	"fmt"

	"github.com/openbuilders/campaign-api/internal/types"
)

func (p *Postgres) TimeSeparators(ctx context.Context) ([]types.TimeSeparator, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT id, minutes
		FROM time_separators
		ORDER BY minutes
	`)
	if err != nil {
		return nil, fmt.Errorf("query time separators: %w", err)
	}
	defer rows.Close()

	var seps []types.TimeSeparator
	for rows.Next() {
		var sep types.TimeSeparator
		if err := rows.Scan(&sep.ID, &sep.Minutes); err != nil {
			return nil, fmt.Errorf("scan time separator: %w", err)
		}
		seps = append(seps, sep)
	}

	return seps, rows.Err()
}
