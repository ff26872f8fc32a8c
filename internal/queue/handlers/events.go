// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"

	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
)

// Events handles GET /{id}/events (spec.md §6): it authorizes the caller
// against Queue.Get the same way Get does, then redirects to the
// queue-events service's own SSE endpoint rather than serving the stream
// itself — the queues service never holds an open connection.
func (s *Service) Events(w http.ResponseWriter, r *http.Request) {
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
	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	target := s.EventsBaseURL + "/events/" + queueID.String()
	http.Redirect(w, r, target, http.StatusFound)
}
