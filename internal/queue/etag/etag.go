// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package etag implements the queue engine's optimistic-concurrency guard
// (spec.md §4.2): readers get a strong ETag computed from a queue's
// (player_state_id, updated) tuple and can make conditional requests against
// it; writers bump the tuple as the witness that their write happened.
// CheckWrite evaluates If-Match/If-Unmodified-Since, but no write handler
// calls it.
package etag

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Value is the wire ETag: a strong pairing of the queue's player_state_id
// (changes on every write) and its updated timestamp (included for
// human-debuggable ordering, not compared independently).
type Value struct {
	PlayerStateID uuid.UUID
	Updated       time.Time
}

// String renders the strong ETag header value, quoted per RFC 7232 §2.3.
func (v Value) String() string {
	return fmt.Sprintf(`"%s-%d"`, v.PlayerStateID, v.Updated.UnixNano())
}

// Parse reconstructs a Value from a header's raw ETag token. It tolerates
// both quoted and unquoted forms and the weak-validator "W/" prefix some
// clients or intermediaries add, since only the player_state_id component is
// load-bearing for equality.
func Parse(raw string) (Value, bool) {
	s := raw
	if len(s) >= 2 && s[0] == 'W' && s[1] == '/' {
		s = s[2:]
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if len(s) < 37 || s[36] != '-' {
		return Value{}, false
	}
	id, err := uuid.Parse(s[:36])
	if err != nil {
		return Value{}, false
	}
	return Value{PlayerStateID: id}, true
}

// Equal compares the load-bearing component of two ETags: the
// player_state_id. A write always mints a fresh one, so equality of this
// field alone is sufficient for both If-Match and If-None-Match semantics.
func (v Value) Equal(other Value) bool {
	return v.PlayerStateID == other.PlayerStateID
}

// ErrPreconditionFailed corresponds to an If-Match/If-Unmodified-Since
// mismatch: the caller's view of the queue is stale and their write must be
// retried against a fresh read (412).
var ErrPreconditionFailed = errors.New("etag: precondition failed")

// NotModified signals a successful If-None-Match/If-Modified-Since match:
// the handler should short-circuit with a bare 304.
var NotModified = errors.New("etag: not modified")

// CheckRead evaluates a GET's conditional headers against current. Returns
// NotModified if the caller already holds the current version.
func CheckRead(r *http.Request, current Value) error {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if v, ok := Parse(inm); ok && v.Equal(current) {
			return NotModified
		}
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil && !current.Updated.After(t) {
			return NotModified
		}
	}
	return nil
}

// CheckWrite evaluates a mutation's conditional headers against current.
// Returns ErrPreconditionFailed if the caller's stated expectation about the
// queue's version does not hold.
func CheckWrite(r *http.Request, current Value) error {
	if im := r.Header.Get("If-Match"); im != "" && im != "*" {
		v, ok := Parse(im)
		if !ok || !v.Equal(current) {
			return ErrPreconditionFailed
		}
	}
	if ius := r.Header.Get("If-Unmodified-Since"); ius != "" {
		if t, err := http.ParseTime(ius); err == nil && current.Updated.After(t) {
			return ErrPreconditionFailed
		}
	}
	return nil
}

// SetHeader writes the ETag and Last-Modified response headers for v.
func SetHeader(w http.ResponseWriter, v Value) {
	w.Header().Set("ETag", v.String())
	w.Header().Set("Last-Modified", v.Updated.UTC().Format(http.TimeFormat))
}
