// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"time"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/peers"
	"github.com/apelle/apelle/internal/queue/code"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/queue/store"
)

// Service bundles every collaborator a queue-service HTTP handler needs.
// One instance is shared across requests; the transaction is created per
// call. Handlers gather their events in a local slice and hand them to
// Publisher.PublishAll after commit; no events.Collector is involved.
type Service struct {
	Store     *store.Store
	Roles     *role.Resolver
	Songs     *peers.SongsClient
	Configs   *peers.ConfigsClient
	Publisher *events.Publisher
	Codes     *code.Generator

	// EventsBaseURL is the public base URL of the queue-events service that
	// GET /{id}/events redirects clients to (e.g. "https://events.apelle.example").
	EventsBaseURL string

	// Now is the clock; overridden in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
