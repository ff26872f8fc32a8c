// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package hub fans incoming events out to per-client subscriptions and
// surfaces the loss signals spec.md §4.5 requires (Lagged(n), Disconnection)
// that Watermill's flat message channel does not provide on its own.
//
// Grounded on internal/websocket/hub.go's Register/Unregister broadcast-hub
// idiom, generalized from WebSocket clients to filtered event subscriptions
// and extended with per-subscription drop counting.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/metrics"
)

// subscriptionBuffer is the bound on a single client's pending-event queue.
// Past this, the client is lagging and the next delivered item is a loss
// marker instead of the event that would have overflowed it.
const subscriptionBuffer = 64

// Delivery is either a real EventContent or a report that some were lost.
type Delivery struct {
	Content EventContent
	Lost    *Lost
}

// EventContent re-exports events.EventContent so callers only import hub.
type EventContent = events.EventContent

// Lost reports that count messages were dropped before this delivery,
// either because a client's buffer overran or because the upstream NATS
// connection was lost (count == 0 signals the latter, "lost everything
// until we can confirm" per spec.md §4.5).
type Lost struct {
	Count int
}

// Subscription is a single client's filtered view onto the hub.
type Subscription struct {
	Queue uuid.UUID
	User  *uuid.UUID

	ch      chan Delivery
	dropped int
	mu      sync.Mutex
	closed  bool
}

// C returns the channel a client reads deliveries from.
func (s *Subscription) C() <-chan Delivery { return s.ch }

func (s *Subscription) send(d Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.dropped > 0 {
		d = Delivery{Lost: &Lost{Count: s.dropped}}
	}
	select {
	case s.ch <- d:
		s.dropped = 0
	default:
		s.dropped++
		metrics.RecordHubLagged()
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// dispatchMsg is the internal envelope carried on the hub's broadcast
// channel; it is always either an event to fan out or the disconnection
// marker.
type dispatchMsg struct {
	queue         uuid.UUID
	user          *uuid.UUID
	content       EventContent
	disconnection bool
}

// Hub is the process-wide fan-out point: one NATS subscriber feeds it,
// arbitrarily many SSE streams read from it via Subscribe.
type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	dispatch   chan dispatchMsg

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// New creates an unstarted Hub; call Run to start its dispatch loop.
func New() *Hub {
	return &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		dispatch:   make(chan dispatchMsg, 256),
		subs:       make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new filtered subscription for (queue, user). Pass a
// nil user to receive only broadcast events.
func (h *Hub) Subscribe(queue uuid.UUID, user *uuid.UUID) *Subscription {
	s := &Subscription{Queue: queue, User: user, ch: make(chan Delivery, subscriptionBuffer)}
	h.register <- s
	return s
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.unregister <- s
}

// Dispatch hands one decoded event to the hub for fan-out. Safe to call
// concurrently; non-blocking up to the dispatch channel's buffer.
func (h *Hub) Dispatch(queue uuid.UUID, user *uuid.UUID, content EventContent) {
	h.dispatch <- dispatchMsg{queue: queue, user: user, content: content}
}

// Disconnected broadcasts the "upstream connection lost" marker to every
// live subscription (spec.md §4.5: "a Disconnection marker is injected,
// target unknown, treated as lost everything until we can confirm").
func (h *Hub) Disconnected() {
	h.dispatch <- dispatchMsg{disconnection: true}
}

// Run drives the hub's single-goroutine dispatch loop until stop is closed,
// at which point every remaining subscription is closed and Run returns.
// Priority-selects lifecycle changes
// ahead of dispatch so a client's subscription state is always consistent
// before it can receive a message, mirroring internal/websocket/hub.go.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			h.mu.Unlock()
			continue
		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				s.close()
			}
			h.mu.Unlock()
			continue
		default:
		}

		select {
		case s := <-h.register:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			h.mu.Unlock()
		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				s.close()
			}
			h.mu.Unlock()
		case m := <-h.dispatch:
			h.broadcast(m)
		case <-stop:
			h.shutdown()
			return
		}
	}
}

func (h *Hub) broadcast(m dispatchMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if m.disconnection {
		for s := range h.subs {
			s.send(Delivery{Lost: &Lost{Count: 0}})
		}
		metrics.RecordHubDisconnection()
		logging.Warn().Msg("events hub: upstream disconnected, all subscribers marked lost")
		return
	}

	for s := range h.subs {
		if s.Queue != m.queue {
			continue
		}
		// spec.md §4.5: deliver broadcasts (m.user == nil) to every
		// subscriber of the queue; deliver a user-targeted event only to
		// the subscription for that user.
		if m.user != nil && (s.User == nil || *s.User != *m.user) {
			continue
		}
		s.send(Delivery{Content: m.content})
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.close()
		delete(h.subs, s)
	}
}
