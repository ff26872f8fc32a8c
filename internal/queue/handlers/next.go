// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/queue/store"
)

// Next handles POST /{id}/next (spec.md §4.9). ?song= names a target song
// explicitly; ?auto=true requests the restricted auto-next mode.
func (s *Service) Next(w http.ResponseWriter, r *http.Request) {
	queueID, err := pathQueueID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller, err := authheaders.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var target *uuid.UUID
	if raw := r.URL.Query().Get("song"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			writeError(w, errBadRequest{"invalid song query parameter"})
			return
		}
		target = &id
	}
	auto := r.URL.Query().Get("auto") == "true"

	tx, err := s.Store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	now := s.now()
	resolved, err := s.Roles.Resolve(r.Context(), tx, queueID, caller.ID, now)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.authorizeNext(r, tx, resolved, target, auto, now); err != nil {
		writeError(w, err)
		return
	}

	broadcast := events.ForQueue(queueID)

	snapshot, err := tx.GetCurrentSnapshot(r.Context(), queueID)
	if err != nil {
		writeError(w, err)
		return
	}
	hadCurrent := snapshot.Song != nil

	if hadCurrent {
		if err := tx.Enqueue(r.Context(), queueID, *snapshot.Song, *snapshot.QueuedBy, now); err != nil {
			writeError(w, err)
			return
		}
		if err := tx.ClearCurrent(r.Context(), queueID); err != nil {
			writeError(w, err)
			return
		}
		broadcast = broadcast.Add("/queue/"+snapshot.Song.String(), QueuedSongView{
			Song: *snapshot.Song, QueuedBy: *snapshot.QueuedBy, QueuedAt: now, Likes: 0, UserLikes: 0,
		}).Move("/current/song", "/queue/"+snapshot.Song.String()+"/song")
	}

	var nextSong, nextQueuedBy uuid.UUID
	if target != nil {
		row, terr := tx.ListQueued(r.Context(), queueID, caller.ID)
		if terr != nil {
			writeError(w, terr)
			return
		}
		found := false
		for _, q := range row {
			if q.SongID == *target {
				found = true
				nextQueuedBy = q.QueuedBy
				break
			}
		}
		if !found {
			writeError(w, store.ErrNotFound)
			return
		}
		if err := tx.RemoveQueuedSong(r.Context(), queueID, *target); err != nil {
			writeError(w, err)
			return
		}
		nextSong = *target
	} else {
		top, terr := tx.NextQueued(r.Context(), queueID)
		if terr != nil {
			writeError(w, terr)
			return
		}
		if err := tx.RemoveQueuedSong(r.Context(), queueID, top.SongID); err != nil {
			writeError(w, err)
			return
		}
		nextSong, nextQueuedBy = top.SongID, top.QueuedBy
	}

	if err := tx.SetCurrentPlaying(r.Context(), queueID, nextSong, nextQueuedBy, now); err != nil {
		writeError(w, err)
		return
	}

	broadcast = broadcast.
		Replace("/current", nil).
		Replace("/current", CurrentView{Song: nextSong, QueuedBy: nextQueuedBy, StartsAt: &now}).
		Move("/queue/"+nextSong.String()+"/song", "/current/song").
		Remove("/queue/" + nextSong.String())

	bumped, err := tx.Bump(r.Context(), queueID, now)
	if err != nil {
		writeError(w, err)
		return
	}
	broadcast = broadcast.
		Replace("/player_state_id", bumped.PlayerStateID).
		Replace("/updated", bumped.Updated)

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.Publisher.PublishAll(r.Context(), []events.Event{broadcast.Build()}); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("ETag", `"`+bumped.PlayerStateID.String()+`"`)
	w.WriteHeader(http.StatusOK)
}

// authorizeNext implements spec.md §4.9's dual authorization: unconditional
// Song.Next, or restricted Song.AutoNext available only when no explicit
// target was named and the current song is absent or has run out.
func (s *Service) authorizeNext(r *http.Request, tx *store.Tx, resolved role.Resolved, target *uuid.UUID, auto bool, now time.Time) error {
	if !auto {
		return role.Require(resolved, model.ActionSongNext)
	}
	if err := role.Require(resolved, model.ActionSongAutoNext); err != nil {
		return err
	}
	if target != nil {
		return role.ErrForbidden
	}

	snapshot, err := tx.GetCurrentSnapshot(r.Context(), resolved.QueueID)
	if err != nil {
		return err
	}
	if snapshot.Song == nil {
		return nil
	}
	if snapshot.StartAt == nil {
		// A paused current song never "runs out" on its own; auto-next
		// requires an explicit Song.Next to skip it.
		return role.ErrForbidden
	}
	song, err := s.Songs.Get(r.Context(), *snapshot.Song)
	if err != nil {
		return err
	}
	if now.Sub(*snapshot.StartAt) < song.Duration {
		return role.ErrForbidden
	}
	return nil
}
