// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/queue/store"
)

// Like handles POST /{id}/songs/{song_id}/like (spec.md §4.8).
func (s *Service) Like(w http.ResponseWriter, r *http.Request) {
	queueID, err := pathQueueID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	songID, err := pathSongID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller, err := authheaders.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

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
	if err := role.Require(resolved, model.ActionSongLike); err != nil {
		writeError(w, err)
		return
	}
	if resolved.User.Role().MaxLikes == 0 {
		writeError(w, role.ErrForbidden)
		return
	}

	changed := map[uuid.UUID]struct{}{songID: {}}

	if resolved.User.LikesConsumed >= resolved.User.Role().MaxLikes {
		displaced, derr := tx.ReclaimOldestLike(r.Context(), queueID, caller.ID)
		if derr != nil && !errors.Is(derr, store.ErrNotFound) {
			writeError(w, derr)
			return
		}
		if derr == nil {
			if displaced == songID {
				// The user's only outstanding like was on the song they're
				// about to like again: no-op, matches spec.md §4.8 step 1.
				// Nothing is committed; the deferred Rollback restores the
				// reclaimed like.
				w.WriteHeader(http.StatusOK)
				return
			}
			changed[displaced] = struct{}{}
		}
	}

	if err := tx.AddLike(r.Context(), queueID, songID, caller.ID, now); err != nil {
		writeError(w, err)
		return
	}

	var toPublish []events.Event
	for sid := range changed {
		likes, lerr := tx.SongLikes(r.Context(), queueID, sid)
		if lerr != nil {
			writeError(w, lerr)
			return
		}
		userLikes, uerr := tx.HasLiked(r.Context(), queueID, sid, caller.ID)
		if uerr != nil {
			writeError(w, uerr)
			return
		}
		userLikesCount := uint16(0)
		if userLikes {
			userLikesCount = 1
		}
		toPublish = append(toPublish,
			events.ForQueue(queueID).Replace("/queue/"+sid.String()+"/likes", likes).Build(),
			events.ForUser(queueID, caller.ID).Replace("/queue/"+sid.String()+"/user_likes", userLikesCount).Build(),
		)
	}

	bumped, err := tx.Bump(r.Context(), queueID, now)
	if err != nil {
		writeError(w, err)
		return
	}
	toPublish = append(toPublish, events.ForQueue(queueID).
		Replace("/player_state_id", bumped.PlayerStateID).
		Replace("/updated", bumped.Updated).Build())

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.Publisher.PublishAll(r.Context(), toPublish); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("ETag", `"`+bumped.PlayerStateID.String()+`"`)
	w.WriteHeader(http.StatusOK)
}
