// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/validation"
)

// enqueueRequest is the search-result-or-song-id body original_source's
// IdOrRep<T> untagged enum models: either a known song id, or a
// source/data pair to resolve through the songs peer service.
type enqueueRequest struct {
	Song     *uuid.UUID     `json:"song,omitempty"`
	Source   string         `json:"source,omitempty" validate:"required_without=Song"`
	Data     map[string]any `json:"data,omitempty"`
	Autolike *bool          `json:"autolike,omitempty"`
}

// Enqueue handles POST /{id}/enqueue (spec.md §4.7).
func (s *Service) Enqueue(w http.ResponseWriter, r *http.Request) {
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

	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest{"invalid request body"})
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, verr)
		return
	}

	song, err := s.resolveSong(r, req)
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
	if err := role.Require(resolved, model.ActionSongEnqueue); err != nil {
		writeError(w, err)
		return
	}

	if queued, qerr := tx.IsQueued(r.Context(), queueID, song.ID); qerr != nil {
		writeError(w, qerr)
		return
	} else if queued {
		writeError(w, errConflict{"song is already queued"})
		return
	}

	if err := tx.Enqueue(r.Context(), queueID, song.ID, caller.ID, now); err != nil {
		writeError(w, err)
		return
	}

	broadcast := events.ForQueue(queueID).Add("/queue/"+song.ID.String(), QueuedSongView{
		Song: song.ID, QueuedBy: caller.ID, QueuedAt: now, Likes: 0, UserLikes: 0,
	})

	var userTargeted []events.Event
	autolike := resolved.User.AutoLike(resolved.Config.Autolike)
	if req.Autolike != nil {
		autolike = *req.Autolike
	}
	if autolike && resolved.User.LikesConsumed < resolved.User.Role().MaxLikes {
		if err := tx.AddLike(r.Context(), queueID, song.ID, caller.ID, now); err != nil {
			writeError(w, err)
			return
		}
		userTargeted = append(userTargeted, events.ForUser(queueID, caller.ID).
			Replace("/queue/"+song.ID.String()+"/user_likes", 1).Build())
	}

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

	toPublish := append([]events.Event{broadcast.Build()}, userTargeted...)
	if err := s.Publisher.PublishAll(r.Context(), toPublish); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("ETag", `"`+bumped.PlayerStateID.String()+`"`)
	w.WriteHeader(http.StatusOK)
}

// resolveSong resolves the incoming search result to a concrete song,
// either by direct id lookup or by resolving a source/data pair through the
// songs peer service (spec.md §4.7 step 1).
func (s *Service) resolveSong(r *http.Request, req enqueueRequest) (songRef, error) {
	if req.Song != nil {
		song, err := s.Songs.Solved(r.Context(), *req.Song, false)
		if err != nil {
			return songRef{}, err
		}
		return songRef{ID: song.ID}, nil
	}
	if req.Source == "" {
		return songRef{}, errBadRequest{"song or source+data is required"}
	}
	song, err := s.Songs.Resolve(r.Context(), req.Source, req.Data, false)
	if err != nil {
		return songRef{}, err
	}
	return songRef{ID: song.ID}, nil
}

type songRef struct {
	ID uuid.UUID
}
