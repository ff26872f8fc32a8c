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

// Delete handles DELETE /{id} (spec.md §4.11). It evaluates no conditional
// headers and does not bump the ETag: the row no longer exists after commit.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := role.Require(resolved, model.ActionQueueDelete); err != nil {
		writeError(w, err)
		return
	}

	if err := tx.DeleteQueue(r.Context(), queueID); err != nil {
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.Publisher.PublishDeleted(r.Context(), queueID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
