// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package peers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/peers/configcache"
	"github.com/apelle/apelle/internal/queue/model"
)

// ConfigsClient resolves QueueConfig values by id, caching results since
// configs are immutable once minted (spec.md §3, SPEC_FULL.md §4.13).
type ConfigsClient struct {
	http  *clientWrapper
	cache *configcache.Cache
}

// NewConfigsClient builds a client bound to the configs service, backed by
// an embedded badger cache.
func NewConfigsClient(baseURL string, timeout time.Duration, cache *configcache.Cache) *ConfigsClient {
	return &ConfigsClient{http: newWrapper("configs", baseURL, timeout), cache: cache}
}

// Get returns the config for id, from cache if present.
func (c *ConfigsClient) Get(ctx context.Context, id uuid.UUID) (*model.Config, error) {
	if cfg, ok := c.cache.Get(id); ok {
		return cfg, nil
	}

	var wire wireConfig
	if err := c.http.get(ctx, "/configs/"+id.String(), nil, &wire); err != nil {
		return nil, err
	}

	cfg := wire.toModel(id)
	c.cache.Put(id, cfg)
	return cfg, nil
}

// wireConfig mirrors the configs service's public QueueConfig shape,
// grounded on original_source/configs/dtos/src/queue_user_role.rs.
type wireConfig struct {
	Roles       map[string]wireRole `json:"roles"`
	CreatorRole string              `json:"creator_role"`
	DefaultRole string              `json:"default_role"`
	BannedRole  string              `json:"banned_role"`
	Autolike    bool                `json:"autolike"`
}

type wireRole struct {
	MaxLikes    uint16   `json:"max_likes"`
	Permissions []string `json:"permissions"`
	CanGrant    []string `json:"can_grant"`
	CanRevoke   []string `json:"can_revoke"`
}

func (w wireConfig) toModel(id uuid.UUID) *model.Config {
	roles := make(map[string]model.Role, len(w.Roles))
	for name, r := range w.Roles {
		var perms model.Permissions
		for _, tok := range r.Permissions {
			if a, ok := model.ParseAction(tok); ok {
				perms = perms.With(a)
			}
		}
		roles[name] = model.Role{
			ID:          name,
			MaxLikes:    r.MaxLikes,
			Permissions: perms,
			CanGrant:    toSet(r.CanGrant),
			CanRevoke:   toSet(r.CanRevoke),
		}
	}
	return &model.Config{
		ID:          id,
		Roles:       roles,
		CreatorRole: w.CreatorRole,
		DefaultRole: w.DefaultRole,
		BannedRole:  w.BannedRole,
		Autolike:    w.Autolike,
	}
}

func toSet(ss []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}
