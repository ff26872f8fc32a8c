// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package model holds the queue domain's entity types: the queue itself, its
// current-song tri-state, queued songs, and the role/action taxonomy used to
// gate every mutating operation.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Queue is the root aggregate: a code-addressable, role-gated, ETag-versioned
// shared playlist with at most one playing or paused song.
type Queue struct {
	ID             uuid.UUID
	Code           string
	ConfigID       uuid.UUID
	Current        *Current
	PlayerStateID  uuid.UUID
	Created        time.Time
	Updated        time.Time
}

// Current is the tagged union described in spec.md §3: a queue either has no
// current song, or one that is playing (timed from an absolute start instant)
// or paused (frozen at a relative offset). The two mutually-exclusive fields
// mirror the DB CHECK constraint (invariant I5) so construction can never
// produce a value the database would reject.
type Current struct {
	Song         uuid.UUID
	QueuedBy     uuid.UUID
	PlayerStateID uuid.UUID

	// Exactly one of these is set.
	startsAt *time.Time
	position *time.Duration
}

// NewPlaying returns a Current timed from an absolute instant.
func NewPlaying(song, queuedBy, playerState uuid.UUID, startsAt time.Time) *Current {
	t := startsAt
	return &Current{Song: song, QueuedBy: queuedBy, PlayerStateID: playerState, startsAt: &t}
}

// NewPaused returns a Current frozen at a relative offset into the song.
func NewPaused(song, queuedBy, playerState uuid.UUID, position time.Duration) *Current {
	p := position
	return &Current{Song: song, QueuedBy: queuedBy, PlayerStateID: playerState, position: &p}
}

// Paused reports whether the song is frozen rather than advancing with wall time.
func (c *Current) Paused() bool {
	return c.position != nil
}

// Position returns how far into the song playback has advanced, clamped to
// [0, duration].
func (c *Current) Position(duration time.Duration, now time.Time) time.Duration {
	var elapsed time.Duration
	if c.position != nil {
		elapsed = *c.position
	} else {
		elapsed = now.Sub(*c.startsAt)
	}
	return clamp(elapsed, 0, duration)
}

// StartsAt returns the wall-clock instant at which the song would have begun
// in order to be at its current position right now.
func (c *Current) StartsAt(duration time.Duration, now time.Time) time.Time {
	if c.startsAt != nil {
		min := now.Add(-duration)
		if c.startsAt.Before(min) {
			return min
		}
		if c.startsAt.After(now) {
			return now
		}
		return *c.startsAt
	}
	return now.Add(-*c.position)
}

// Stopped reports whether the song is paused or has played past its own
// duration.
func (c *Current) Stopped(duration time.Duration, now time.Time) bool {
	if c.position != nil {
		return true
	}
	return now.Sub(*c.startsAt) >= duration
}

// Playing reports the complement of Stopped.
func (c *Current) Playing(duration time.Duration, now time.Time) bool {
	return !c.Stopped(duration, now)
}

// Pause freezes the song at its current position. Returns false if already paused.
func (c *Current) Pause(duration time.Duration, now time.Time) bool {
	if c.Paused() {
		return false
	}
	p := c.Position(duration, now)
	c.position = &p
	c.startsAt = nil
	return true
}

// Resume converts a paused song back to an absolute start instant. Returns
// false if already playing.
func (c *Current) Resume(duration time.Duration, now time.Time) bool {
	if !c.Paused() {
		return false
	}
	s := c.StartsAt(duration, now)
	c.startsAt = &s
	c.position = nil
	return true
}

// RawStartsAt returns the stored absolute start instant and true if this
// Current is in the Playing variant.
func (c *Current) RawStartsAt() (time.Time, bool) {
	if c.startsAt == nil {
		return time.Time{}, false
	}
	return *c.startsAt, true
}

// RawPosition returns the stored frozen offset and true if this Current is
// in the Paused variant.
func (c *Current) RawPosition() (time.Duration, bool) {
	if c.position == nil {
		return 0, false
	}
	return *c.position, true
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// QueuedSong is a song waiting its turn, keyed by (queue, song).
type QueuedSong struct {
	Song      uuid.UUID
	QueuedAt  time.Time
	QueuedBy  uuid.UUID
	Likes     uint16
	UserLikes uint16
}

// QueueUser is the per-(queue,user) membership row: the resolved role, the
// user's autolike override, and their presence timestamp.
type QueueUser struct {
	QueueID      uuid.UUID
	UserID       uuid.UUID
	RoleID       string
	AutolikeOverride *bool
	LastSeen     time.Time
	LikesConsumed uint16

	role Role
}

// NewQueueUser attaches the resolved Role to a QueueUser so Can/AutoLike have
// something to evaluate against.
func NewQueueUser(qu QueueUser, role Role) *QueueUser {
	qu.role = role
	return &qu
}

// Role returns the role resolved for this user at request time.
func (u *QueueUser) Role() Role { return u.role }

// Can reports whether the user's role grants the given action.
func (u *QueueUser) Can(action Action) bool {
	return u.role.Permissions.Has(action)
}

// AutoLike resolves the effective autolike default: the user's own override
// if set, otherwise the config's default.
func (u *QueueUser) AutoLike(configDefault bool) bool {
	if u.AutolikeOverride != nil {
		return *u.AutolikeOverride
	}
	return configDefault
}
