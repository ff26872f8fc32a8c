// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import "context"

type contextKey string

const collectorKey contextKey = "events_collector"

// WithCollector attaches a Collector to ctx for handlers to recover via
// FromContext. SPEC_FULL.md §9 follows the source repo's explicit
// preference for passing the collector through request-scoped context
// rather than hiding it in goroutine-local state.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey, c)
}

// FromContext recovers the Collector attached by WithCollector. Returns nil
// if none is attached. Only the package's tests call it; no middleware
// attaches a Collector.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey).(*Collector)
	return c
}
