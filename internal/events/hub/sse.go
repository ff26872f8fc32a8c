// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package hub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/go-resty/resty/v2"

	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/metrics"
	"github.com/apelle/apelle/internal/queue/authheaders"
)

const keepAliveInterval = 15 * time.Second

// StreamHandler serves GET /events/{id} (spec.md §4.6): one SSE connection
// per client, driven by a Subscription on the Hub and a per-client
// StateMachine, with push_sync_event requested through a thin HTTP client
// against the queues service.
type StreamHandler struct {
	Hub          *Hub
	QueuesClient *resty.Client
	SyncTimeout  time.Duration
}

// ServeHTTP implements the handler. It never returns until the client
// disconnects, the stream ends (Deleted sentinel), or the resync deadline
// expires.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	queueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid queue id", http.StatusBadRequest)
		return
	}
	caller, err := authheaders.FromRequest(r)
	if err != nil {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.Hub.Subscribe(queueID, &caller.ID)
	defer h.Hub.Unsubscribe(sub)
	metrics.TrackSSEStream(true)
	defer metrics.TrackSSEStream(false)

	sm := NewStateMachine(h.SyncTimeout)
	h.requestSync(r, queueID, caller.ID)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	deadlineTimer := time.NewTimer(time.Hour)
	defer deadlineTimer.Stop()
	armDeadline := func() {
		if !deadlineTimer.Stop() {
			select {
			case <-deadlineTimer.C:
			default:
			}
		}
		if sm.State() == StateDroppingUntilSync {
			deadlineTimer.Reset(time.Until(sm.Deadline()))
		} else {
			deadlineTimer.Reset(time.Hour)
		}
	}
	armDeadline()

	for {
		deadline := deadlineTimer.C
		select {
		case <-r.Context().Done():
			return
		case <-deadline:
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case d, open := <-sub.C():
			if !open {
				return
			}
			result := sm.Step(d)
			if result.Deliver != nil {
				payload, err := json.Marshal(result.Deliver)
				if err != nil {
					logging.Error().Err(err).Msg("marshal sse event")
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				flusher.Flush()
			}
			if result.NeedsSync {
				h.requestSync(r, queueID, caller.ID)
			}
			armDeadline()
			if result.Close {
				return
			}
		}
	}
}

// requestSync asks the queues service to emit a fresh Sync event for this
// caller (spec.md §4.6's push_sync_event round-trip).
func (h *StreamHandler) requestSync(r *http.Request, queueID, userID uuid.UUID) {
	_, err := h.QueuesClient.R().
		SetContext(r.Context()).
		SetHeader(authheaders.IDHeader, userID.String()).
		Post(fmt.Sprintf("/%s/push_sync_event", queueID))
	if err != nil {
		logging.Warn().Err(err).Str("queue", queueID.String()).Msg("push_sync_event request failed")
	}
}
