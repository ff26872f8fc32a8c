// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import "github.com/google/uuid"

// Event is a patch addressed to every viewer of a queue, or to one specific
// user within it (spec.md §4.3: "target_user = None means broadcast").
type Event struct {
	Queue   uuid.UUID
	User    *uuid.UUID
	Content Patch
}

// Builder accumulates patch operations for a single Event. Obtained via
// ForQueue or ForUser, terminated with Build.
type Builder struct {
	queue   uuid.UUID
	user    *uuid.UUID
	content Patch
}

// ForQueue starts a broadcast event builder for every viewer of queue.
func ForQueue(queue uuid.UUID) *Builder {
	return &Builder{queue: queue}
}

// ForUser starts a user-targeted event builder, delivered only to user
// within queue.
func ForUser(queue, user uuid.UUID) *Builder {
	return &Builder{queue: queue, user: &user}
}

// Replace appends a replace operation.
func (b *Builder) Replace(path string, value interface{}) *Builder {
	b.content = append(b.content, PatchOp{Op: OpReplace, Path: path, Value: value})
	return b
}

// Add appends an add operation.
func (b *Builder) Add(path string, value interface{}) *Builder {
	b.content = append(b.content, PatchOp{Op: OpAdd, Path: path, Value: value})
	return b
}

// Remove appends a remove operation.
func (b *Builder) Remove(path string) *Builder {
	b.content = append(b.content, PatchOp{Op: OpRemove, Path: path})
	return b
}

// Move appends a move operation.
func (b *Builder) Move(from, to string) *Builder {
	b.content = append(b.content, PatchOp{Op: OpMove, Path: to, From: from})
	return b
}

// Then appends another patch's operations in order.
func (b *Builder) Then(other Patch) *Builder {
	b.content = append(b.content, other...)
	return b
}

// Build finalizes the event.
func (b *Builder) Build() Event {
	return Event{Queue: b.queue, User: b.user, Content: b.content}
}

// Len reports the number of operations the event carries.
func (e Event) Len() int { return len(e.Content) }

// IsEmpty reports whether the event carries no operations.
func (e Event) IsEmpty() bool { return len(e.Content) == 0 }
