// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"

	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/etag"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/role"
)

// Get handles GET /{id} (spec.md §4.10, §6). Honors conditional GET headers
// against the queue's ETag before doing any work.
func (s *Service) Get(w http.ResponseWriter, r *http.Request) {
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

	current, err := tx.GetETag(r.Context(), queueID)
	if err != nil {
		writeError(w, err)
		return
	}
	ev := etag.Value{PlayerStateID: current.PlayerStateID, Updated: current.Updated}
	if err := etag.CheckRead(r, ev); err != nil {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	view, err := buildView(r.Context(), tx, queueID, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	etag.SetHeader(w, ev)
	writeJSON(w, http.StatusOK, view)
}
