// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import (
	"testing"

	"github.com/google/uuid"
)

func TestForQueue_IsBroadcast(t *testing.T) {
	q := uuid.New()
	e := ForQueue(q).Replace("/current", "x").Build()

	if e.Queue != q {
		t.Errorf("Queue = %v, want %v", e.Queue, q)
	}
	if e.User != nil {
		t.Errorf("User = %v, want nil for a broadcast event", e.User)
	}
}

func TestForUser_IsTargeted(t *testing.T) {
	q, u := uuid.New(), uuid.New()
	e := ForUser(q, u).Replace("/likes", 1).Build()

	if e.Queue != q {
		t.Errorf("Queue = %v, want %v", e.Queue, q)
	}
	if e.User == nil || *e.User != u {
		t.Errorf("User = %v, want %v", e.User, u)
	}
}

func TestBuilder_AccumulatesOps(t *testing.T) {
	e := ForQueue(uuid.New()).
		Replace("/a", 1).
		Add("/b", 2).
		Remove("/c").
		Move("/d", "/e").
		Build()

	if e.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", e.Len())
	}
	want := []Op{OpReplace, OpAdd, OpRemove, OpMove}
	for i, op := range want {
		if e.Content[i].Op != op {
			t.Errorf("Content[%d].Op = %v, want %v", i, e.Content[i].Op, op)
		}
	}
	if e.Content[3].Path != "/e" || e.Content[3].From != "/d" {
		t.Errorf("move op = %+v, want Path=/e From=/d", e.Content[3])
	}
}

func TestBuilder_Then(t *testing.T) {
	other := Patch{{Op: OpReplace, Path: "/x"}}
	e := ForQueue(uuid.New()).Add("/a", 1).Then(other).Build()

	if e.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.Len())
	}
	if e.Content[1].Path != "/x" {
		t.Errorf("Content[1].Path = %q, want /x", e.Content[1].Path)
	}
}

func TestEvent_IsEmpty(t *testing.T) {
	empty := ForQueue(uuid.New()).Build()
	if !empty.IsEmpty() {
		t.Error("expected a builder with no ops to produce an empty event")
	}

	nonEmpty := ForQueue(uuid.New()).Replace("/a", 1).Build()
	if nonEmpty.IsEmpty() {
		t.Error("expected a builder with ops to produce a non-empty event")
	}
}
