// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package role resolves the caller's permissions within a specific queue:
// it loads the queue's config, upserts the caller's queue_user row, and
// attaches a Resolved value later handlers use to authorize actions
// (spec.md §4.1).
package role

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/peers"
	"github.com/apelle/apelle/internal/queue/model"
	"github.com/apelle/apelle/internal/queue/store"
)

// ErrQueueNotFound is returned when the queue named in the request path
// does not exist — the resolver's first lookup (spec.md §4.1 step 1).
var ErrQueueNotFound = errors.New("role: queue not found")

// Resolved is what every handler receives after resolution: the caller's
// effective role and enough queue_user state to apply role-dependent
// behavior such as the per-user autolike override.
type Resolved struct {
	QueueID       uuid.UUID
	ConfigID      uuid.UUID
	User          *model.QueueUser
	Config        *model.Config
	PlayerStateID uuid.UUID
}

// Resolver loads configs (through the cached peer client) and materializes
// queue_user rows, grounded on original_source's per-request role-resolution
// middleware that runs ahead of every handler.
type Resolver struct {
	configs *peers.ConfigsClient
}

// New builds a Resolver over the given configs peer client.
func New(configs *peers.ConfigsClient) *Resolver {
	return &Resolver{configs: configs}
}

// Resolve loads the config for queueID, upserts userID's queue_user row
// (assigning the config's default role on first sight), and returns the
// caller's effective, authorization-ready role.
func (res *Resolver) Resolve(ctx context.Context, tx *store.Tx, queueID, userID uuid.UUID, now time.Time) (Resolved, error) {
	configID, err := tx.GetConfigID(ctx, queueID)
	if errors.Is(err, store.ErrNotFound) {
		return Resolved{}, ErrQueueNotFound
	}
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve role: %w", err)
	}

	cfg, err := res.configs.Get(ctx, configID)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve role: load config: %w", err)
	}

	row, err := tx.UpsertQueueUser(ctx, queueID, userID, cfg.DefaultRole, now)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve role: upsert queue user: %w", err)
	}

	likesConsumed, err := tx.LikesConsumed(ctx, queueID, userID)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve role: count likes: %w", err)
	}

	roleDef := cfg.Role(row.RoleID)
	qu := model.NewQueueUser(model.QueueUser{
		QueueID:          queueID,
		UserID:           userID,
		RoleID:           row.RoleID,
		AutolikeOverride: row.AutolikeOverride,
		LastSeen:         row.LastSeen,
		LikesConsumed:    likesConsumed,
	}, roleDef)

	etag, err := tx.GetETag(ctx, queueID)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve role: read etag: %w", err)
	}

	return Resolved{
		QueueID:       queueID,
		ConfigID:      configID,
		User:          qu,
		Config:        cfg,
		PlayerStateID: etag.PlayerStateID,
	}, nil
}

// Require checks the resolved caller can perform action, returning
// ErrForbidden if not — spec.md §4.1's "every write handler checks
// Role.can(action) before doing anything else".
var ErrForbidden = errors.New("role: action not permitted")

// Require returns ErrForbidden unless r.User.Can(action).
func Require(r Resolved, action model.Action) error {
	if !r.User.Can(action) {
		return ErrForbidden
	}
	return nil
}
