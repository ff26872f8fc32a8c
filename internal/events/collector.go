// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import "sync"

// Capacity is the fixed per-request event budget. original_source's
// Collector<5> is sized to the tightest handler (next, with a re-enqueue,
// emits exactly 5 ops); SPEC_FULL.md §9(a) keeps this as a compile-time
// constant rather than a dynamic bound. Collect panics past this budget: in
// this system that is a programming error in a handler, not a runtime
// condition to recover from.
const Capacity = 5

// Collector is a bounded, ordered event buffer that can be attached to a
// request context with WithCollector. No middleware or handler in this
// repository creates or drains one: the queue handlers gather events in a
// local slice and pass them to Publisher.PublishAll after commit.
type Collector struct {
	mu     sync.Mutex
	events [Capacity]Event
	n      int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect appends an event. Panics if the request's handler collects more
// than Capacity events — see the doc comment above.
func (c *Collector) Collect(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n >= Capacity {
		panic("events: collector capacity exceeded")
	}
	c.events[c.n] = e
	c.n++
}

// Drain returns the collected events in the order they were collected and
// empties the collector.
func (c *Collector) Drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, c.n)
	copy(out, c.events[:c.n])
	c.n = 0
	return out
}

// Len reports how many events are currently buffered.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
