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
	"strings"
	"time"

	"github.com/google/uuid"
)

// QueuedSongRow is a queued_song row plus its aggregated like totals,
// grounded on original_source/queues/src/handlers/get.rs's song-listing
// query (likes via one join, the caller's own like count via a second).
type QueuedSongRow struct {
	SongID    uuid.UUID
	QueuedBy  uuid.UUID
	QueuedAt  time.Time
	Likes     uint16
	UserLikes uint16
}

// Enqueue inserts a queued_song row. Returns ErrConflict (caller maps to
// 409) if the song is already queued, per invariant I2.
func (tx *Tx) Enqueue(ctx context.Context, queueID, songID, queuedBy uuid.UUID, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO queued_song (queue_id, song_id, queued_by, queued_at)
		VALUES (?, ?, ?, ?)
	`, queueID, songID, queuedBy, at)
	if err != nil {
		if isTransactionConflict(err) || strings.Contains(err.Error(), "Duplicate key") {
			return ErrConflict
		}
		return fmt.Errorf("enqueue song: %w", err)
	}
	return nil
}

// IsQueued reports whether song_id is already present in the queue,
// independent of the current-song slot (invariant I2: a song queued and
// a song playing are mutually exclusive membership states).
func (tx *Tx) IsQueued(ctx context.Context, queueID, songID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM queued_song WHERE queue_id = ? AND song_id = ?)",
		queueID, songID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check queued: %w", err)
	}
	return exists, nil
}

// RemoveQueuedSong deletes a queued_song row. Returns ErrNotFound if absent.
func (tx *Tx) RemoveQueuedSong(ctx context.Context, queueID, songID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM queued_song WHERE queue_id = ? AND song_id = ?", queueID, songID,
	)
	if err != nil {
		return fmt.Errorf("remove queued song: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListQueued returns every queued song ordered by descending like count then
// ascending queued_at, the ordering spec.md §3 names as the queue's display
// order. userID selects whose like-count column is populated.
func (tx *Tx) ListQueued(ctx context.Context, queueID, userID uuid.UUID) ([]QueuedSongRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT
			qs.song_id,
			qs.queued_by,
			qs.queued_at,
			COALESCE((SELECT SUM(l.count) FROM likes l WHERE l.queue_id = qs.queue_id AND l.song_id = qs.song_id), 0) AS likes,
			COALESCE((SELECT SUM(l.count) FROM likes l WHERE l.queue_id = qs.queue_id AND l.song_id = qs.song_id AND l.user_id = ?), 0) AS user_likes
		FROM queued_song qs
		WHERE qs.queue_id = ?
		ORDER BY likes DESC, qs.queued_at ASC
	`, userID, queueID)
	if err != nil {
		return nil, fmt.Errorf("list queued songs: %w", err)
	}
	defer rows.Close()

	var out []QueuedSongRow
	for rows.Next() {
		var r QueuedSongRow
		if err := rows.Scan(&r.SongID, &r.QueuedBy, &r.QueuedAt, &r.Likes, &r.UserLikes); err != nil {
			return nil, fmt.Errorf("scan queued song: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// NextQueued returns the song that would become current on a next/auto-next
// transition: highest likes, earliest queued_at, per spec.md §4.9's ordering
// rule. Returns ErrNotFound if the queue is empty.
func (tx *Tx) NextQueued(ctx context.Context, queueID uuid.UUID) (QueuedSongRow, error) {
	var r QueuedSongRow
	err := tx.QueryRowContext(ctx, `
		SELECT
			qs.song_id,
			qs.queued_by,
			qs.queued_at,
			COALESCE((SELECT SUM(l.count) FROM likes l WHERE l.queue_id = qs.queue_id AND l.song_id = qs.song_id), 0) AS likes
		FROM queued_song qs
		WHERE qs.queue_id = ?
		ORDER BY likes DESC, qs.queued_at ASC
		LIMIT 1
	`, queueID).Scan(&r.SongID, &r.QueuedBy, &r.QueuedAt, &r.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return QueuedSongRow{}, ErrNotFound
	}
	if err != nil {
		return QueuedSongRow{}, fmt.Errorf("next queued song: %w", err)
	}
	return r, nil
}
