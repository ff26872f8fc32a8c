// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package handlers implements the queue service's HTTP surface (spec.md
// §4.7-§4.11, §6): create, get, enqueue, like, next, delete, and
// push_sync_event, each wired over the role resolver. Get honours
// If-None-Match/If-Modified-Since through the ETag guard; no write handler
// evaluates If-Match or If-Unmodified-Since. Write handlers publish their
// events through the Publisher after commit.
package handlers

import (
	"errors"
	"net/http"

	"github.com/apelle/apelle/internal/peers"
	"github.com/apelle/apelle/internal/queue/authheaders"
	"github.com/apelle/apelle/internal/queue/etag"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/queue/store"
)

// httpStatuser is implemented by handler-local error types that know their
// own HTTP mapping (SPEC_FULL.md §7's taxonomy).
type httpStatuser interface {
	HTTPStatus() int
}

// statusFor derives the HTTP status for err per spec.md §7's table, falling
// back to 500 for anything unrecognized.
func statusFor(err error) int {
	var hs httpStatuser
	if errors.As(err, &hs) {
		return hs.HTTPStatus()
	}
	switch {
	case errors.Is(err, authheaders.ErrMissing):
		return http.StatusUnauthorized
	case errors.Is(err, role.ErrQueueNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, role.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, etag.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	}
	var pe *peers.PeerError
	if errors.As(err, &pe) {
		return peers.StatusCodeOrBadGateway(err)
	}
	return http.StatusInternalServerError
}

// writeError renders err as a JSON error body with the status statusFor
// would pick.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + jsonEscape(err.Error()) + `"}`))
}

func jsonEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// errConflict is a local sentinel distinct from store.ErrConflict for
// domain conflicts that don't originate from the database (e.g. enqueue of
// an already-present song detected before the insert races the unique
// constraint).
type errConflict struct{ msg string }

func (e errConflict) Error() string    { return e.msg }
func (e errConflict) HTTPStatus() int  { return http.StatusConflict }

// errBadRequest marks a client-input error (malformed body/query).
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string   { return e.msg }
func (e errBadRequest) HTTPStatus() int { return http.StatusBadRequest }
