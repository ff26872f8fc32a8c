// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package store

import (
	"context"
	"fmt"
)

// Migration is a versioned, monotonically-applied schema change, grounded
// on internal/database/migrations.go's Migration/schema_migrations idiom.
type Migration struct {
	Version     int
	Name        string
	SQL         string
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// migrations returns the queue schema in order. SPEC_FULL.md §4.14 carries
// the full DDL, including the CHECK constraint that is the database-level
// witness for invariant I5 (current-song tri-nullability).
func migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "initial schema",
			SQL: `
CREATE TABLE queue (
    id                     UUID PRIMARY KEY,
    code                   TEXT NOT NULL UNIQUE,
    config_id              UUID NOT NULL,
    current_song           UUID,
    current_song_start_at  TIMESTAMPTZ,
    current_song_position  BIGINT,
    current_song_queued_by UUID,
    player_state_id        UUID NOT NULL,
    created                TIMESTAMPTZ NOT NULL,
    updated                TIMESTAMPTZ NOT NULL,
    CHECK (
        (current_song IS NULL AND current_song_start_at IS NULL
                              AND current_song_position IS NULL
                              AND current_song_queued_by IS NULL)
        OR
        (current_song IS NOT NULL AND current_song_queued_by IS NOT NULL AND (
            (current_song_start_at IS NOT NULL AND current_song_position IS NULL) OR
            (current_song_start_at IS NULL AND current_song_position IS NOT NULL)
        ))
    )
);

CREATE TABLE queued_song (
    queue_id   UUID NOT NULL REFERENCES queue(id) ON DELETE CASCADE,
    song_id    UUID NOT NULL,
    queued_by  UUID NOT NULL,
    queued_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (queue_id, song_id)
);

CREATE TABLE likes (
    queue_id  UUID NOT NULL REFERENCES queue(id) ON DELETE CASCADE,
    song_id   UUID NOT NULL,
    user_id   UUID NOT NULL,
    given_at  TIMESTAMPTZ NOT NULL,
    count     INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (queue_id, song_id, user_id, given_at)
);

CREATE TABLE queue_user (
    queue_id   UUID NOT NULL REFERENCES queue(id) ON DELETE CASCADE,
    user_id    UUID NOT NULL,
    role_id    TEXT NOT NULL,
    autolike   BOOLEAN,
    last_seen  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (queue_id, user_id)
);
`,
		},
	}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := s.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("query applied migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations() {
		if applied[m.Version] {
			continue
		}
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
