package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type Postgres struct {
	pg          DB
	pingTimeout time.Duration
	log         *slog.Logger
}

func New(pool DB, pingTimeout time.Duration) *Postgres {
	return &Postgres{
		pg:          pool,
		pingTimeout: pingTimeout,
		log:         slog.With("component", "db"),
	}
}

// Ping checks the connection up to 3 times, pingTimeout apart.
func (p *Postgres) Ping(ctx context.Context) error {
	ticker := time.NewTicker(p.pingTimeout)
	defer ticker.Stop()

	var err error
	for i := 1; i <= 3; i++ {
		// a ping against a dead server can hang, so it gets its own deadline
		// slightly shorter than the retry interval
		pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout-10*time.Millisecond)
		err = p.pg.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		p.log.Info("ping attempt was not successful", "attempt", i, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return err
}

// IsUpAndRunning is a single ping used by the health checker.
func (p *Postgres) IsUpAndRunning(ctx context.Context) error {
	return p.pg.Ping(ctx)
}

// inTx runs fn in a transaction and commits it when fn succeeds.
func (p *Postgres) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			p.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
