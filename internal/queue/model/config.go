// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package model

import "github.com/google/uuid"

// Role bundles a like budget, a permission set, and the grant/revoke graph a
// holder of the role may exercise over other roles. Grounded on
// original_source/configs/dtos/src/queue_user_role.rs.
type Role struct {
	ID          string
	MaxLikes    uint16
	Permissions Permissions
	CanGrant    map[string]struct{}
	CanRevoke   map[string]struct{}
}

// Config is the immutable, UUID-identified bundle of roles a queue is
// created with. Configs are never mutated in place; updates mint a new UUID
// (spec.md §3), which is what makes the badger-backed config cache in
// internal/peers/configcache safe to keep without an expiry.
type Config struct {
	ID          uuid.UUID
	Roles       map[string]Role
	CreatorRole string
	DefaultRole string
	BannedRole  string
	Autolike    bool
}

// Role looks up a role by id. For an unknown id it returns a Role carrying
// that id and no permissions (zero MaxLikes, no actions), not the config's
// banned role.
func (c *Config) Role(id string) Role {
	if r, ok := c.Roles[id]; ok {
		return r
	}
	return Role{ID: id}
}
