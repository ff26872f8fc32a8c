// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathQueueID extracts and parses the {id} path parameter every
// queue-scoped route carries.
func pathQueueID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, errBadRequest{"invalid queue id"}
	}
	return id, nil
}

// pathSongID extracts and parses the {song_id} path parameter the like
// route carries.
func pathSongID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "song_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, errBadRequest{"invalid song id"}
	}
	return id, nil
}
