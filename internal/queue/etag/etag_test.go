// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package etag

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStringAndParseRoundTrip(t *testing.T) {
	v := Value{PlayerStateID: uuid.New(), Updated: time.Now()}

	parsed, ok := Parse(v.String())
	if !ok {
		t.Fatalf("Parse(%q) failed", v.String())
	}
	if !parsed.Equal(v) {
		t.Errorf("parsed = %v, want equal to %v", parsed, v)
	}
}

func TestParse_ToleratesWeakPrefixAndUnquoted(t *testing.T) {
	v := Value{PlayerStateID: uuid.New()}
	quoted := v.String()
	unquoted := quoted[1 : len(quoted)-1]

	for _, raw := range []string{quoted, "W/" + quoted, unquoted} {
		parsed, ok := Parse(raw)
		if !ok {
			t.Errorf("Parse(%q) failed", raw)
			continue
		}
		if !parsed.Equal(v) {
			t.Errorf("Parse(%q) = %v, want equal to %v", raw, parsed, v)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", `"not-a-uuid"`, `"`, `"` + uuid.New().String()} {
		if _, ok := Parse(raw); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestEqual_IgnoresUpdated(t *testing.T) {
	id := uuid.New()
	a := Value{PlayerStateID: id, Updated: time.Now()}
	b := Value{PlayerStateID: id, Updated: time.Now().Add(time.Hour)}

	if !a.Equal(b) {
		t.Error("expected values sharing a player_state_id to be Equal regardless of Updated")
	}
}

func TestCheckRead_IfNoneMatch(t *testing.T) {
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now()}

	match := httptest.NewRequest(http.MethodGet, "/", nil)
	match.Header.Set("If-None-Match", current.String())
	if err := CheckRead(match, current); err != NotModified {
		t.Errorf("err = %v, want NotModified", err)
	}

	stale := httptest.NewRequest(http.MethodGet, "/", nil)
	stale.Header.Set("If-None-Match", Value{PlayerStateID: uuid.New()}.String())
	if err := CheckRead(stale, current); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestCheckRead_IfModifiedSince(t *testing.T) {
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now().Truncate(time.Second)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-Modified-Since", current.Updated.UTC().Format(http.TimeFormat))
	if err := CheckRead(req, current); err != NotModified {
		t.Errorf("err = %v, want NotModified", err)
	}
}

func TestCheckRead_NoConditionalHeaders(t *testing.T) {
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now()}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := CheckRead(req, current); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestCheckWrite_IfMatch(t *testing.T) {
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now()}

	ok := httptest.NewRequest(http.MethodPost, "/", nil)
	ok.Header.Set("If-Match", current.String())
	if err := CheckWrite(ok, current); err != nil {
		t.Errorf("err = %v, want nil", err)
	}

	stale := httptest.NewRequest(http.MethodPost, "/", nil)
	stale.Header.Set("If-Match", Value{PlayerStateID: uuid.New()}.String())
	if err := CheckWrite(stale, current); err != ErrPreconditionFailed {
		t.Errorf("err = %v, want ErrPreconditionFailed", err)
	}
}

func TestCheckWrite_IfMatchWildcard(t *testing.T) {
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now()}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("If-Match", "*")
	if err := CheckWrite(req, current); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestCheckWrite_IfUnmodifiedSince(t *testing.T) {
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	current := Value{PlayerStateID: uuid.New(), Updated: time.Now()}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("If-Unmodified-Since", past.UTC().Format(http.TimeFormat))
	if err := CheckWrite(req, current); err != ErrPreconditionFailed {
		t.Errorf("err = %v, want ErrPreconditionFailed", err)
	}
}

func TestSetHeader(t *testing.T) {
	v := Value{PlayerStateID: uuid.New(), Updated: time.Now()}
	rec := httptest.NewRecorder()

	SetHeader(rec, v)

	if got := rec.Header().Get("ETag"); got != v.String() {
		t.Errorf("ETag header = %q, want %q", got, v.String())
	}
	if got := rec.Header().Get("Last-Modified"); got != v.Updated.UTC().Format(http.TimeFormat) {
		t.Errorf("Last-Modified header = %q, want %q", got, v.Updated.UTC().Format(http.TimeFormat))
	}
}
