// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package peers

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Song is the subset of the songs service's public representation this
// project consumes, grounded on
// original_source/songs/dtos/src/public.rs's Song shape.
type Song struct {
	ID       uuid.UUID       `json:"id"`
	Duration time.Duration   `json:"duration"`
	Source   string          `json:"source,omitempty"`
	Data     map[string]any  `json:"data,omitempty"`
}

// SearchResultState is the tagged union a client's search-result body
// carries into enqueue: either a song already known to the songs service,
// or raw provider data that must be resolved into one.
type SearchResultState struct {
	Known *uuid.UUID     `json:"known,omitempty"`
	New   map[string]any `json:"new,omitempty"`
}

// SearchResultItem is the body enqueue (spec.md §4.7) accepts.
type SearchResultItem struct {
	Source string            `json:"source"`
	State  SearchResultState `json:"state"`
}

// SongsClient is a thin wrapper over the songs service's read/resolve
// surface (spec.md §1: out of core scope, touched only here).
type SongsClient struct {
	http *clientWrapper
}

// NewSongsClient builds a client bound to the songs service base URL.
func NewSongsClient(baseURL string, timeout time.Duration) *SongsClient {
	return &SongsClient{http: newWrapper("songs", baseURL, timeout)}
}

// Solved fetches a song already known to the songs service by id.
func (c *SongsClient) Solved(ctx context.Context, id uuid.UUID, withSourceData bool) (Song, error) {
	var song Song
	err := c.http.get(ctx, "/solved/"+id.String(), map[string]string{
		"source_data": boolParam(withSourceData),
	}, &song)
	return song, err
}

// Resolve asks the songs service to mint a song from a source-provided
// search result, per original_source/queues/src/handlers/enqueue.rs.
func (c *SongsClient) Resolve(ctx context.Context, source string, data map[string]any, withSourceData bool) (Song, error) {
	var song Song
	body := map[string]any{"source": source, "data": data}
	err := c.http.post(ctx, "/resolve", map[string]string{
		"source_data": boolParam(withSourceData),
	}, body, &song)
	return song, err
}

// Get fetches a song by id without forcing the "solved" (search-linked)
// representation; used by the auto-next duration check
// (original_source/queues/src/handlers/next.rs).
func (c *SongsClient) Get(ctx context.Context, id uuid.UUID) (Song, error) {
	var song Song
	err := c.http.get(ctx, "/songs/"+id.String(), map[string]string{"source_data": "false"}, &song)
	return song, err
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
