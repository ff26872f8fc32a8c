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

// QueueUserRow is a queue_user row as stored, before the role resolver
// attaches the resolved Role (internal/queue/role does that attachment).
type QueueUserRow struct {
	RoleID           string
	AutolikeOverride *bool
	LastSeen         time.Time
}

// UpsertQueueUser inserts a queue_user row on first sight of (queue, user),
// assigning defaultRole, or refreshes last_seen on an existing row. Grounded
// on original_source/queues/src/handlers middleware that resolves the
// caller's role before every handler runs (spec.md §4.1).
func (tx *Tx) UpsertQueueUser(ctx context.Context, queueID, userID uuid.UUID, defaultRole string, now time.Time) (QueueUserRow, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO queue_user (queue_id, user_id, role_id, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (queue_id, user_id) DO UPDATE SET last_seen = excluded.last_seen
	`, queueID, userID, defaultRole, now)
	if err != nil {
		return QueueUserRow{}, fmt.Errorf("upsert queue user: %w", err)
	}

	var row QueueUserRow
	err = tx.QueryRowContext(ctx,
		"SELECT role_id, autolike, last_seen FROM queue_user WHERE queue_id = ? AND user_id = ?",
		queueID, userID,
	).Scan(&row.RoleID, &row.AutolikeOverride, &row.LastSeen)
	if err != nil {
		return QueueUserRow{}, fmt.Errorf("reload queue user: %w", err)
	}
	return row, nil
}

// GetQueueUser reads an existing queue_user row without upserting. Returns
// ErrNotFound if the user has never been seen in this queue.
func (tx *Tx) GetQueueUser(ctx context.Context, queueID, userID uuid.UUID) (QueueUserRow, error) {
	var row QueueUserRow
	err := tx.QueryRowContext(ctx,
		"SELECT role_id, autolike, last_seen FROM queue_user WHERE queue_id = ? AND user_id = ?",
		queueID, userID,
	).Scan(&row.RoleID, &row.AutolikeOverride, &row.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return QueueUserRow{}, ErrNotFound
	}
	if err != nil {
		return QueueUserRow{}, fmt.Errorf("get queue user: %w", err)
	}
	return row, nil
}

// SetRole changes a user's role. No handler in this repository calls it.
func (tx *Tx) SetRole(ctx context.Context, queueID, userID uuid.UUID, roleID string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE queue_user SET role_id = ? WHERE queue_id = ? AND user_id = ?", roleID, queueID, userID,
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveQueueUser deletes a queue_user row. No handler in this repository
// calls it.
func (tx *Tx) RemoveQueueUser(ctx context.Context, queueID, userID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM queue_user WHERE queue_id = ? AND user_id = ?", queueID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove queue user: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
