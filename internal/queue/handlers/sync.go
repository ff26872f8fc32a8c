// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
)

// PushSyncEvent handles POST /{id}/push_sync_event (spec.md §4.6, §9 open
// question (a)): it computes the full queue view and emits it as a
// user-targeted Sync event for the requester, letting an SSE stream recover
// from Lagged/Disconnection markers without the client presenting
// credentials to any service other than this one. Scoped to the caller's
// own session only: a user can always request their own resync, never
// another user's.
func (s *Service) PushSyncEvent(w http.ResponseWriter, r *http.Request) {
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

	tx, err := s.Store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	resolved, err := s.Roles.Resolve(r.Context(), tx, queueID, caller.ID, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := role.Require(resolved, model.ActionQueueGet); err != nil {
		writeError(w, err)
		return
	}

	view, err := buildView(r.Context(), tx, queueID, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Read-only: no mutation, so no commit witness and no broadcast event
	// other than the sync payload itself is needed.
	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	target := events.Event{Queue: queueID, User: &caller.ID}
	if err := s.Publisher.PublishSync(r.Context(), target, view); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
