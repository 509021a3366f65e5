package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ai-stack/stackctl/internal/initializer"
)

// postgresDDL creates the application's schema objects. Every statement is
// idempotent: a rerun after an unrecorded success (setup done, marker write
// failed) must not error.
var postgresDDL = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
	`CREATE SCHEMA IF NOT EXISTS app`,
	`CREATE TABLE IF NOT EXISTS app.conversations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS app.messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		conversation_id UUID NOT NULL REFERENCES app.conversations(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_idx
		ON app.messages (conversation_id, created_at)`,
}

// Postgres builds a Setup that creates the application schema over the given
// DSN using pgx.
func Postgres(logger *slog.Logger, dsn string) initializer.Setup {
	return func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer func() { _ = conn.Close(ctx) }()

		for _, stmt := range postgresDDL {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("exec DDL: %w", err)
			}
		}
		logger.Info("postgres schema objects ensured", "statements", len(postgresDDL))
		return nil
	}
}
