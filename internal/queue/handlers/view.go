// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/store"
)

// QueueView is the wire shape of GET /queues/{id} and of a Sync event's
// payload (spec.md §4.10: "the shape matches what SYNC events carry").
type QueueView struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	ConfigID      uuid.UUID        `json:"config_id"`
	Current       *CurrentView     `json:"current"`
	Queue         []QueuedSongView `json:"queue"`
	PlayerStateID uuid.UUID        `json:"player_state_id"`
	Updated       time.Time        `json:"updated"`
}

// CurrentView is the tagged current-song view: exactly one of StartsAt or
// Position is non-nil (invariant I5 surfaced over the wire).
type CurrentView struct {
	Song     uuid.UUID  `json:"song"`
	QueuedBy uuid.UUID  `json:"queued_by"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	Position *float64   `json:"position,omitempty"`
}

// QueuedSongView is one row of the queue listing.
type QueuedSongView struct {
	Song      uuid.UUID `json:"song"`
	QueuedBy  uuid.UUID `json:"queued_by"`
	QueuedAt  time.Time `json:"queued_at"`
	Likes     uint16    `json:"likes"`
	UserLikes uint16    `json:"user_likes"`
}

// buildView composes the full queue view the Get handler and push_sync_event
// both serve, grounded on original_source/queues/src/handlers/get.rs's
// per-song lateral-join aggregation, expressed here as two store queries.
func buildView(ctx context.Context, tx *store.Tx, queueID, viewerID uuid.UUID) (QueueView, error) {
	etagv, err := tx.GetETag(ctx, queueID)
	if err != nil {
		return QueueView{}, err
	}

	var code string
	var configID uuid.UUID
	err = tx.QueryRowContext(ctx, "SELECT code, config_id FROM queue WHERE id = ?", queueID).Scan(&code, &configID)
	if err != nil {
		return QueueView{}, err
	}

	cur, err := tx.GetCurrent(ctx, queueID, etagv.PlayerStateID)
	if err != nil {
		return QueueView{}, err
	}

	rows, err := tx.ListQueued(ctx, queueID, viewerID)
	if err != nil {
		return QueueView{}, err
	}

	view := QueueView{
		ID:            queueID,
		Code:          code,
		ConfigID:      configID,
		PlayerStateID: etagv.PlayerStateID,
		Updated:       etagv.Updated,
	}
	if cur != nil {
		view.Current = currentToView(cur)
	}
	view.Queue = make([]QueuedSongView, 0, len(rows))
	for _, r := range rows {
		view.Queue = append(view.Queue, QueuedSongView{
			Song: r.SongID, QueuedBy: r.QueuedBy, QueuedAt: r.QueuedAt,
			Likes: r.Likes, UserLikes: r.UserLikes,
		})
	}
	return view, nil
}

func currentToView(c *model.Current) *CurrentView {
	v := &CurrentView{Song: c.Song, QueuedBy: c.QueuedBy}
	if sa, ok := c.RawStartsAt(); ok {
		v.StartsAt = &sa
	}
	if p, ok := c.RawPosition(); ok {
		secs := p.Seconds()
		v.Position = &secs
	}
	return v
}
