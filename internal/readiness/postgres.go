package readiness

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgConn abstracts the pgxpool.Pool methods used by the probe so tests can
// inject a fake without standing up a real database.
type pgConn interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresProber verifies Postgres answers real queries, not merely that the
// port accepts connections.
type PostgresProber struct {
	// DSN is the postgresql:// connection string from the generated
	// environment.
	DSN string

	connect func(ctx context.Context, dsn string) (pgConn, error)
}

// NewPostgresProber constructs a prober for the given DSN. No connection is
// opened until Probe is called.
func NewPostgresProber(dsn string) *PostgresProber {
	return &PostgresProber{DSN: dsn, connect: pgConnect}
}

// Probe opens a short-lived pool, pings it and runs a trivial query. Postgres
// in recovery or still replaying WAL accepts connections but fails here.
func (p *PostgresProber) Probe(ctx context.Context) error {
	conn, err := p.connect(ctx, p.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	var one int
	if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return nil
}

// pgConnect opens a real pgxpool.Pool for the DSN.
func pgConnect(ctx context.Context, dsn string) (pgConn, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	cfg.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}
