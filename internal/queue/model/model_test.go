// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCurrent_PlayingVariant(t *testing.T) {
	song, user, ps := uuid.New(), uuid.New(), uuid.New()
	duration := 3 * time.Minute
	now := time.Now()
	startedAt := now.Add(-30 * time.Second)

	c := NewPlaying(song, user, ps, startedAt)

	if c.Paused() {
		t.Error("expected Paused() = false for a playing song")
	}
	if got := c.Position(duration, now); got != 30*time.Second {
		t.Errorf("Position() = %v, want 30s", got)
	}
	if c.Stopped(duration, now) {
		t.Error("expected Stopped() = false within the song duration")
	}
	if !c.Playing(duration, now) {
		t.Error("expected Playing() = true within the song duration")
	}
	if got, ok := c.RawStartsAt(); !ok || !got.Equal(startedAt) {
		t.Errorf("RawStartsAt() = %v, %v; want %v, true", got, ok, startedAt)
	}
	if _, ok := c.RawPosition(); ok {
		t.Error("expected RawPosition() ok = false for a playing Current")
	}
}

func TestCurrent_PausedVariant(t *testing.T) {
	song, user, ps := uuid.New(), uuid.New(), uuid.New()
	duration := 3 * time.Minute
	now := time.Now()

	c := NewPaused(song, user, ps, 45*time.Second)

	if !c.Paused() {
		t.Error("expected Paused() = true")
	}
	if got := c.Position(duration, now); got != 45*time.Second {
		t.Errorf("Position() = %v, want 45s", got)
	}
	if !c.Stopped(duration, now) {
		t.Error("expected Stopped() = true for a paused song")
	}
	if c.Playing(duration, now) {
		t.Error("expected Playing() = false for a paused song")
	}
	if _, ok := c.RawStartsAt(); ok {
		t.Error("expected RawStartsAt() ok = false for a paused Current")
	}
	if got, ok := c.RawPosition(); !ok || got != 45*time.Second {
		t.Errorf("RawPosition() = %v, %v; want 45s, true", got, ok)
	}
}

func TestCurrent_Position_ClampsToDuration(t *testing.T) {
	duration := time.Minute
	now := time.Now()
	c := NewPlaying(uuid.New(), uuid.New(), uuid.New(), now.Add(-5*time.Minute))

	if got := c.Position(duration, now); got != duration {
		t.Errorf("Position() = %v, want clamped to duration %v", got, duration)
	}
}

func TestCurrent_PauseThenResume(t *testing.T) {
	duration := 3 * time.Minute
	now := time.Now()
	c := NewPlaying(uuid.New(), uuid.New(), uuid.New(), now.Add(-20*time.Second))

	if !c.Pause(duration, now) {
		t.Fatal("expected first Pause() to succeed")
	}
	if !c.Paused() {
		t.Error("expected Paused() = true after Pause()")
	}
	if c.Pause(duration, now) {
		t.Error("expected second Pause() to report false (already paused)")
	}

	resumeAt := now.Add(10 * time.Second)
	if !c.Resume(duration, resumeAt) {
		t.Fatal("expected first Resume() to succeed")
	}
	if c.Paused() {
		t.Error("expected Paused() = false after Resume()")
	}
	if c.Resume(duration, resumeAt) {
		t.Error("expected second Resume() to report false (already playing)")
	}

	// Position should be preserved across the pause/resume round trip.
	if got := c.Position(duration, resumeAt); got != 20*time.Second {
		t.Errorf("Position() after resume = %v, want 20s", got)
	}
}

func TestQueueUser_CanAndAutoLike(t *testing.T) {
	role := Role{ID: "member", Permissions: NewPermissions(ActionSongLike)}
	qu := NewQueueUser(QueueUser{RoleID: "member"}, role)

	if !qu.Can(ActionSongLike) {
		t.Error("expected Can(ActionSongLike) = true")
	}
	if qu.Can(ActionUserBan) {
		t.Error("expected Can(ActionUserBan) = false")
	}
	if qu.Role().ID != "member" {
		t.Errorf("Role().ID = %q, want member", qu.Role().ID)
	}

	if got := qu.AutoLike(true); !got {
		t.Error("expected config default (true) when no override is set")
	}

	override := false
	qu.AutolikeOverride = &override
	if got := qu.AutoLike(true); got {
		t.Error("expected the user's override (false) to win over the config default")
	}
}

func TestConfig_Role_UnknownFallsBackToZeroPermissions(t *testing.T) {
	cfg := &Config{Roles: map[string]Role{
		"owner": {ID: "owner", Permissions: NewPermissions(ActionQueueDelete)},
	}}

	if got := cfg.Role("owner"); got.ID != "owner" || !got.Permissions.Has(ActionQueueDelete) {
		t.Errorf("Role(owner) = %+v, want the owner role", got)
	}

	unknown := cfg.Role("ghost")
	if unknown.ID != "ghost" {
		t.Errorf("Role(ghost).ID = %q, want ghost", unknown.ID)
	}
	if unknown.Permissions != 0 {
		t.Errorf("Role(ghost).Permissions = %v, want zero", unknown.Permissions)
	}
}
