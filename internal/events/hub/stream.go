// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package hub

import (
	"time"

	"github.com/apelle/apelle/internal/events"
)

// StreamState is the per-client SSE state machine of spec.md §4.6.
type StreamState int

const (
	StateInitial StreamState = iota
	StateDroppingUntilSync
	StateRunning
	StateEnded
)

// StateMachine drives one client's stream. When the machine needs a fresh
// full-state snapshot (entering DroppingUntilSync) Step returns NeedsSync;
// it is the caller's job to POST push_sync_event, matching
// original_source/queues/events/src/handler.rs's ask_sync_event/run.
type StateMachine struct {
	state       StreamState
	deadline    time.Time
	syncTimeout time.Duration
	now         func() time.Time
}

// NewStateMachine starts in DroppingUntilSync, awaiting the stream's first
// Sync event, matching the Rust handler's scan seed state.
func NewStateMachine(syncTimeout time.Duration) *StateMachine {
	return newStateMachineWithClock(syncTimeout, time.Now)
}

func newStateMachineWithClock(syncTimeout time.Duration, now func() time.Time) *StateMachine {
	return &StateMachine{
		state:       StateDroppingUntilSync,
		deadline:    now().Add(syncTimeout),
		syncTimeout: syncTimeout,
		now:         now,
	}
}

// State returns the current state, mostly useful for tests.
func (m *StateMachine) State() StreamState { return m.state }

// StepResult tells the caller what to do with a delivery.
type StepResult struct {
	// Deliver is non-nil when the client should be sent this content.
	Deliver *events.EventContent
	// NeedsSync is true when the caller must issue a fresh push_sync_event
	// request (entering DroppingUntilSync from Running).
	NeedsSync bool
	// Close is true when the stream should be torn down so the client
	// reconnects (sync-deadline expiry) or ends permanently (Deleted).
	Close bool
}

// Step advances the machine on one delivery from the hub.
func (m *StateMachine) Step(d Delivery) StepResult {
	switch m.state {
	case StateEnded:
		return StepResult{Close: true}

	case StateRunning:
		if d.Lost != nil {
			m.state = StateDroppingUntilSync
			m.deadline = m.now().Add(m.syncTimeout)
			return StepResult{NeedsSync: true}
		}
		content := d.Content
		if d.Content.Tag == events.TagDeleted {
			m.state = StateEnded
			return StepResult{Deliver: &content, Close: true}
		}
		return StepResult{Deliver: &content}

	case StateDroppingUntilSync:
		if m.now().After(m.deadline) {
			return StepResult{Close: true}
		}
		if d.Lost != nil {
			// Still dropping; nothing to deliver.
			return StepResult{}
		}
		if d.Content.Tag == events.TagSync {
			m.state = StateRunning
			content := d.Content
			return StepResult{Deliver: &content}
		}
		return StepResult{}
	}
	return StepResult{Close: true}
}

// Deadline returns the instant a DroppingUntilSync wait expires, for a
// caller that wants to drive a timer alongside the hub channel.
func (m *StateMachine) Deadline() time.Time {
	return m.deadline
}

// DeadlineExceeded reports whether a DroppingUntilSync deadline has expired
// without input (used by a timer-driven select alongside the hub channel).
func (m *StateMachine) DeadlineExceeded() bool {
	return m.state == StateDroppingUntilSync && m.now().After(m.deadline)
}
