// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/metrics"
)

// channelPrefix is the routing-key namespace spec.md §6 assigns to the
// pub/sub wire format: "apelle:queues:events:{queue}[:{user}]".
const channelPrefix = "apelle:queues:events:"

// Channel returns the routing key for a broadcast or user-targeted event.
func Channel(e Event) string {
	if e.User == nil {
		return channelPrefix + e.Queue.String()
	}
	return channelPrefix + e.Queue.String() + ":" + e.User.String()
}

// PublisherConfig configures the underlying NATS connection.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// Publisher flushes collected events to the pub/sub bus, circuit-broken per
// SPEC_FULL.md §4.15: an open breaker (or any publish failure) becomes a 502
// at the HTTP layer per spec.md §4.4 — the DB transaction has already
// committed by the time Publish runs.
//
// Grounded on internal/eventprocessor/publisher.go's Watermill/NATS wiring,
// generalized from media events to queue patch/sync/deleted events.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	closed    bool
}

// NewPublisher dials NATS and wraps it in a circuit breaker.
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Error().Err(err).Msg("nats publisher disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("nats publisher reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "events-publisher",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
	})

	return &Publisher{publisher: pub, breaker: breaker}, nil
}

// Publish serializes the event's content and sends it on its routing key.
func (p *Publisher) Publish(ctx context.Context, e Event, content EventContent) error {
	if p.closed {
		return fmt.Errorf("events: publisher is closed")
	}

	payload, err := json.Marshal(struct {
		Content EventContent `json:"content"`
	}{content})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(Channel(e), msg)
	})
	return err
}

// PublishAll publishes every event collected during a request, in order.
// Per spec.md §4.3/§5, the caller only reaches this after a successful
// commit; a failure partway through still leaves the DB authoritative and
// is surfaced to the caller as a 502 (§4.4, §7).
func (p *Publisher) PublishAll(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e, NewPatchContent(e.Content)); err != nil {
			return err
		}
	}
	metrics.RecordCollectorFlush(len(events))
	return nil
}

// PublishDeleted publishes the terminal Deleted sentinel for a queue to its
// broadcast channel, instructing every subscriber's stream state machine to
// transition to Ended (spec.md §4.6, §4.11).
func (p *Publisher) PublishDeleted(ctx context.Context, queue uuid.UUID) error {
	return p.Publish(ctx, Event{Queue: queue}, DeletedContent)
}

// PublishSync publishes a full queue snapshot as a user-targeted Sync
// event, the payload the push_sync_event endpoint emits to let one client's
// SSE stream recover from a Lagged/Disconnection marker (spec.md §4.6).
func (p *Publisher) PublishSync(ctx context.Context, target Event, queueView any) error {
	return p.Publish(ctx, target, NewSyncContent(queueView))
}

// Close shuts the underlying publisher down.
func (p *Publisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
