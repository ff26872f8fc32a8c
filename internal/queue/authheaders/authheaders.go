// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package authheaders extracts the caller identity that an upstream gateway
// has already authenticated and attached as trusted request headers.
// Authentication itself (OIDC, sessions, tokens) is out of scope here — the
// queue engine trusts whatever sits in front of it, grounded on
// original_source/common/src/auth.rs's AuthHeaders extractor.
package authheaders

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// IDHeader and NameHeader mirror original_source's ID_HEADER/NAME_HEADER
// constants exactly, so a compatible gateway needs no changes.
const (
	IDHeader   = "X-Apelle-User-Id"
	NameHeader = "X-Apelle-User-Name"
)

// ErrMissing is returned when a required identity header is absent or
// malformed.
var ErrMissing = errors.New("authheaders: missing or invalid caller identity")

// Identity is the caller the upstream gateway vouches for.
type Identity struct {
	ID   uuid.UUID
	Name string
}

// FromRequest extracts the caller identity, required. Handlers that must
// always run as an authenticated user call this directly.
func FromRequest(r *http.Request) (Identity, error) {
	raw := r.Header.Get(IDHeader)
	if raw == "" {
		return Identity{}, ErrMissing
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Identity{}, ErrMissing
	}
	return Identity{ID: id, Name: r.Header.Get(NameHeader)}, nil
}

// FromRequestOptional extracts the caller identity if present, returning
// (Identity{}, false) rather than an error when absent — grounded on
// original_source's OptionalFromRequestParts impl. No handler in this
// repository calls it.
func FromRequestOptional(r *http.Request) (Identity, bool) {
	id, err := FromRequest(r)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

type contextKey struct{}

// WithContext attaches id to ctx for downstream handlers/loggers.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the identity attached by WithContext, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
