package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables the service needs. Every statement is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pg.Exec(ctx, schema, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	p.log.Info("schema is up to date")

	return nil
}
