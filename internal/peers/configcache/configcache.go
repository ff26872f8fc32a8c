// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package configcache is an embedded, durable cache for QueueConfig values
// keyed by their UUID. SPEC_FULL.md §4.13: configs are immutable once
// minted, so entries never need invalidation. Entries carry no TTL and are
// never evicted: the store keeps every config it has been given.
//
// Grounded on internal/auth/session_badger.go's BadgerDB-as-KV-store idiom,
// generalized from sessions to immutable config blobs.
package configcache

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/queue/model"
)

const keyPrefix = "config:"

// Cache wraps a badger database dedicated to config blobs.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger store at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open config cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying badger database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached config for id, if present.
func (c *Cache) Get(id uuid.UUID) (*model.Config, bool) {
	var cfg model.Config
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cfg)
		})
	})
	if err != nil {
		return nil, false
	}
	return &cfg, true
}

// Put stores cfg under id. Configs never change once minted, so callers
// never need to invalidate an existing entry.
func (c *Cache) Put(id uuid.UUID, cfg *model.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+id.String()), data)
	})
}
