// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/validation"
)

// createRequest is the POST / body: the config to create the queue with,
// and an optional explicit code (primarily for tests/imports).
type createRequest struct {
	ConfigID uuid.UUID `json:"config_id" validate:"required"`
	Code     string    `json:"code,omitempty" validate:"omitempty,max=64"`
}

// Create handles POST / (spec.md §6: "any" auth, creator role assigned).
func (s *Service) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := authheaders.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest{"invalid request body"})
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, verr)
		return
	}

	cfg, err := s.Configs.Get(r.Context(), req.ConfigID)
	if err != nil {
		writeError(w, err)
		return
	}

	queueID := uuid.New()
	playerStateID := uuid.New()
	now := s.now()

	code, err := s.allocateCode(r, req.Code)
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

	if err := tx.CreateQueue(r.Context(), queueID, code, cfg.ID, playerStateID, now); err != nil {
		writeError(w, err)
		return
	}
	if _, err := tx.UpsertQueueUser(r.Context(), queueID, caller.ID, cfg.CreatorRole, now); err != nil {
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	view := QueueView{
		ID: queueID, Code: code, ConfigID: cfg.ID,
		PlayerStateID: playerStateID, Updated: now, Queue: []QueuedSongView{},
	}
	writeJSON(w, http.StatusCreated, view)
}

// allocateCode returns explicit if the caller supplied one, otherwise
// generates and retries against uniqueness conflicts with widening entropy
// (SPEC_FULL.md §4.19's code.retry_bits).
func (s *Service) allocateCode(r *http.Request, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for attempt := 0; attempt < 8; attempt++ {
		candidate, err := s.Codes.Generate(attempt)
		if err != nil {
			return "", err
		}
		tx, err := s.Store.Begin(r.Context())
		if err != nil {
			return "", err
		}
		taken, err := tx.CodeTaken(r.Context(), candidate)
		tx.Rollback()
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		logging.Debug().Str("code", candidate).Int("attempt", attempt).Msg("queue code collision, retrying")
	}
	return "", errConflict{"could not allocate a unique queue code"}
}

// writeJSON is the shared response encoder for handlers in this package.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
