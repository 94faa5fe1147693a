package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE broadcast_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS broadcasts (
		id UUID PRIMARY KEY,
		trigger TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status broadcast_status NOT NULL DEFAULT 'running',
		target_count INTEGER NOT NULL DEFAULT 0,
		finished_count INTEGER NOT NULL DEFAULT 0,
		errored_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_broadcasts_started_at ON broadcasts (started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS broadcast_targets (
		broadcast_id UUID NOT NULL REFERENCES broadcasts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		guild_id TEXT NOT NULL,
		guild_name TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL,
		channel_name TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (broadcast_id, position)
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
