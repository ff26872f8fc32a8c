// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package configcache

import (
	"testing"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/queue/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutAndGet(t *testing.T) {
	c := openTestCache(t)
	id := uuid.New()
	cfg := &model.Config{
		ID:          id,
		CreatorRole: "owner",
		DefaultRole: "member",
		BannedRole:  "banned",
		Autolike:    true,
		Roles: map[string]model.Role{
			"owner": {ID: "owner", MaxLikes: 10, Permissions: model.NewPermissions(model.ActionQueueDelete)},
		},
	}

	if err := c.Put(id, cfg); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(id)
	if !ok {
		t.Fatal("Get returned ok = false after Put")
	}
	if got.ID != cfg.ID || got.DefaultRole != cfg.DefaultRole || got.Autolike != cfg.Autolike {
		t.Errorf("got = %+v, want %+v", got, cfg)
	}
	if !got.Role("owner").Permissions.Has(model.ActionQueueDelete) {
		t.Errorf("expected the owner role's permissions to round-trip through JSON")
	}
}

func TestGet_Miss(t *testing.T) {
	c := openTestCache(t)

	if _, ok := c.Get(uuid.New()); ok {
		t.Error("expected Get on an unknown id to return ok = false")
	}
}

func TestPut_NeverInvalidates(t *testing.T) {
	c := openTestCache(t)
	id := uuid.New()

	first := &model.Config{ID: id, DefaultRole: "member"}
	if err := c.Put(id, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Configs are immutable once minted (SPEC_FULL.md §4.13): a second Put
	// under the same id still simply overwrites, there is no guard against
	// it, because the caller never has a reason to call it twice.
	second := &model.Config{ID: id, DefaultRole: "owner"}
	if err := c.Put(id, second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(id)
	if !ok {
		t.Fatal("Get returned ok = false")
	}
	if got.DefaultRole != "owner" {
		t.Errorf("DefaultRole = %q, want the latest write (owner)", got.DefaultRole)
	}
}
