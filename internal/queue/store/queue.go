// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/queue/model"
)

// CreateQueue inserts the queue row only; the create handler assigns the
// creator's queue_user row through UpsertQueueUser in the same transaction.
// Grounded on original_source/queues/src/handlers/create.rs.
func (tx *Tx) CreateQueue(ctx context.Context, id uuid.UUID, code string, configID uuid.UUID, playerStateID uuid.UUID, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO queue (id, code, config_id, player_state_id, created, updated)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, code, configID, playerStateID, now, now)
	if err != nil {
		return fmt.Errorf("insert queue: %w", err)
	}
	return nil
}

// CodeTaken reports whether code is already assigned to a queue, used by
// the create handler's code-generation retry loop.
func (tx *Tx) CodeTaken(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM queue WHERE code = ?)", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return exists, nil
}

// ETag is the (player_state_id, updated) tuple the optimistic-concurrency
// guard reads and compares (spec.md §4.2).
type ETag struct {
	PlayerStateID uuid.UUID
	Updated       time.Time
}

// GetETag reads a queue's current version tuple. Returns ErrNotFound if the
// queue does not exist.
func (tx *Tx) GetETag(ctx context.Context, queueID uuid.UUID) (ETag, error) {
	var e ETag
	err := tx.QueryRowContext(ctx,
		"SELECT player_state_id, updated FROM queue WHERE id = ?", queueID,
	).Scan(&e.PlayerStateID, &e.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return ETag{}, ErrNotFound
	}
	if err != nil {
		return ETag{}, fmt.Errorf("get etag: %w", err)
	}
	return e, nil
}

// GetConfigID returns the config a queue was created with. Returns
// ErrNotFound if the queue does not exist (spec.md §4.1 step 1).
func (tx *Tx) GetConfigID(ctx context.Context, queueID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, "SELECT config_id FROM queue WHERE id = ?", queueID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.UUID{}, ErrNotFound
	}
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("get config id: %w", err)
	}
	return id, nil
}

// Bump is the ETag guard's commit witness (spec.md §4.2): it mints a new
// player_state_id and sets updated = now, and is the single row-update that
// serializes concurrent writers on this queue (SPEC_FULL.md §4.14).
func (tx *Tx) Bump(ctx context.Context, queueID uuid.UUID, now time.Time) (ETag, error) {
	newID := uuid.New()
	res, err := tx.ExecContext(ctx,
		"UPDATE queue SET player_state_id = ?, updated = ? WHERE id = ?", newID, now, queueID,
	)
	if err != nil {
		return ETag{}, fmt.Errorf("bump queue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ETag{}, ErrNotFound
	}
	return ETag{PlayerStateID: newID, Updated: now}, nil
}

// DeleteQueue removes the queue row; ON DELETE CASCADE covers queued_song,
// likes, and queue_user rows (invariant I4).
func (tx *Tx) DeleteQueue(ctx context.Context, queueID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", queueID)
	if err != nil {
		return fmt.Errorf("delete queue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// currentRow is the raw tri-state row shape read back from `queue`.
type currentRow struct {
	song       *uuid.UUID
	startAt    *time.Time
	position   *int64 // nanoseconds
	queuedBy   *uuid.UUID
}

// GetCurrent reads the queue's current-song tri-state, reconstructing the
// Playing/Paused/None variant from the DB-enforced nullability witness
// (invariant I5), grounded on original_source/queues/src/handlers/get.rs's
// exact match arms including its "this should never happen" branch.
func (tx *Tx) GetCurrent(ctx context.Context, queueID uuid.UUID, playerStateID uuid.UUID) (*model.Current, error) {
	var row currentRow
	err := tx.QueryRowContext(ctx, `
		SELECT current_song, current_song_start_at, current_song_position, current_song_queued_by
		FROM queue WHERE id = ?
	`, queueID).Scan(&row.song, &row.startAt, &row.position, &row.queuedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get current: %w", err)
	}

	switch {
	case row.song == nil:
		return nil, nil
	case row.startAt != nil && row.position == nil:
		return model.NewPlaying(*row.song, *row.queuedBy, playerStateID, *row.startAt), nil
	case row.startAt == nil && row.position != nil:
		return model.NewPaused(*row.song, *row.queuedBy, playerStateID, time.Duration(*row.position)), nil
	default:
		// invariant I5 guarantees exactly one of (start_at, position) is
		// set whenever current_song is non-null; the CHECK constraint
		// makes this branch unreachable outside a corrupted database.
		return nil, fmt.Errorf("store: queue %s violates current-song nullability invariant", queueID)
	}
}

// SetCurrentPlaying writes the queue's current song as an absolute-start
// playing state, used by the next/auto-next handler.
func (tx *Tx) SetCurrentPlaying(ctx context.Context, queueID, song, queuedBy uuid.UUID, startAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE queue
		SET current_song = ?, current_song_start_at = ?, current_song_position = NULL, current_song_queued_by = ?
		WHERE id = ?
	`, song, startAt, queuedBy, queueID)
	if err != nil {
		return fmt.Errorf("set current playing: %w", err)
	}
	return nil
}

// ClearCurrent nulls out the current-song triple.
func (tx *Tx) ClearCurrent(ctx context.Context, queueID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE queue
		SET current_song = NULL, current_song_start_at = NULL, current_song_position = NULL, current_song_queued_by = NULL
		WHERE id = ?
	`, queueID)
	if err != nil {
		return fmt.Errorf("clear current: %w", err)
	}
	return nil
}

// CurrentSnapshot is the minimal data the next/auto-next handler's
// availability check needs.
type CurrentSnapshot struct {
	Song     *uuid.UUID
	QueuedBy *uuid.UUID
	StartAt  *time.Time
}

// GetCurrentSnapshot reads just enough of the current-song state to decide
// auto-next availability and to re-enqueue it.
func (tx *Tx) GetCurrentSnapshot(ctx context.Context, queueID uuid.UUID) (CurrentSnapshot, error) {
	var s CurrentSnapshot
	err := tx.QueryRowContext(ctx, `
		SELECT current_song, current_song_queued_by, current_song_start_at FROM queue WHERE id = ?
	`, queueID).Scan(&s.Song, &s.QueuedBy, &s.StartAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CurrentSnapshot{}, ErrNotFound
	}
	if err != nil {
		return CurrentSnapshot{}, fmt.Errorf("get current snapshot: %w", err)
	}
	return s, nil
}
