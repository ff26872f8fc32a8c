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
)

// HasLiked reports whether userID already holds a like on songID in queueID.
func (tx *Tx) HasLiked(ctx context.Context, queueID, songID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM likes WHERE queue_id = ? AND song_id = ? AND user_id = ?)",
		queueID, songID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// LikesConsumed counts the likes a user currently holds across the queue,
// the value spec.md §4.10 compares against the caller's role MaxLikes.
func (tx *Tx) LikesConsumed(ctx context.Context, queueID, userID uuid.UUID) (uint16, error) {
	var n uint16
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE queue_id = ? AND user_id = ?", queueID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

// AddLike records a new like. Callers enforce the MaxLikes budget (via
// ReclaimOldestLike) before calling this.
func (tx *Tx) AddLike(ctx context.Context, queueID, songID, userID uuid.UUID, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO likes (queue_id, song_id, user_id, given_at, count)
		VALUES (?, ?, ?, ?, 1)
	`, queueID, songID, userID, at)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

// ReclaimOldestLike deletes the caller's oldest outstanding like in the
// queue and returns the song it had been on, so the handler can emit the
// matching decrement patch for it. Returns ErrNotFound if the user holds no
// likes at all (a programming error: callers only reclaim when over
// budget, which implies at least one outstanding like).
func (tx *Tx) ReclaimOldestLike(ctx context.Context, queueID, userID uuid.UUID) (uuid.UUID, error) {
	var songID uuid.UUID
	var givenAt time.Time
	err := tx.QueryRowContext(ctx, `
		SELECT song_id, given_at FROM likes
		WHERE queue_id = ? AND user_id = ?
		ORDER BY given_at ASC
		LIMIT 1
	`, queueID, userID).Scan(&songID, &givenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.UUID{}, ErrNotFound
	}
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("find oldest like: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"DELETE FROM likes WHERE queue_id = ? AND song_id = ? AND user_id = ? AND given_at = ?",
		queueID, songID, userID, givenAt,
	)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("reclaim oldest like: %w", err)
	}
	return songID, nil
}

// SongLikes sums the likes currently held on songID, the value surfaced in
// the queue listing and patched on every like/reclaim transition.
func (tx *Tx) SongLikes(ctx context.Context, queueID, songID uuid.UUID) (uint16, error) {
	var n uint16
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(count), 0) FROM likes WHERE queue_id = ? AND song_id = ?",
		queueID, songID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum song likes: %w", err)
	}
	return n, nil
}
