// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/google/uuid"
)

// SubscriberConfig configures the process-wide NATS pattern subscription
// described in spec.md §4.5.
type SubscriberConfig struct {
	URL           string
	QueueGroup    string
	DurableName   string
	MaxReconnects int
}

// Subscriber is the process-wide singleton maintaining one NATS connection,
// pattern-subscribed to every queue's events channel (spec.md §4.5). It
// decodes the routing key back into (queue, user) and forwards each
// EventContent to the broadcast hub for per-client fan-out.
//
// Grounded on internal/eventprocessor/subscriber.go's Watermill/NATS wiring.
type Subscriber struct {
	subscriber message.Subscriber
}

// NewSubscriber dials NATS; the subscription to the apelle:queues:events:*
// pattern is made by Run.
func NewSubscriber(cfg SubscriberConfig, logger watermill.LoggerAdapter) (*Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      true,
			DurablePrefix: cfg.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return &Subscriber{subscriber: sub}, nil
}

// Run subscribes to the wildcard channel pattern and dispatches every
// decoded message to dispatch until ctx is canceled. dispatch returns
// nothing (hub.Dispatch cannot fail); taking it as a function lets tests
// inject a recording dispatcher.
func (s *Subscriber) Run(ctx context.Context, dispatch func(queue uuid.UUID, user *uuid.UUID, content EventContent)) error {
	msgs, err := s.subscriber.Subscribe(ctx, channelPrefix+">")
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for msg := range msgs {
		queue, user, ok := parseChannel(msg.Metadata.Get("subject"))
		if !ok {
			msg.Ack()
			continue
		}

		var envelope struct {
			Content EventContent `json:"content"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			msg.Nack()
			continue
		}

		dispatch(queue, user, envelope.Content)
		msg.Ack()
	}
	return ctx.Err()
}

// Close releases the underlying NATS subscription.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}

// parseChannel decodes "apelle:queues:events:{queue}[:{user}]" back into its
// components.
func parseChannel(subject string) (queue uuid.UUID, user *uuid.UUID, ok bool) {
	rest := strings.TrimPrefix(subject, channelPrefix)
	if rest == subject {
		return uuid.UUID{}, nil, false
	}
	parts := strings.SplitN(rest, ":", 2)
	q, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.UUID{}, nil, false
	}
	if len(parts) == 2 {
		u, err := uuid.Parse(parts[1])
		if err != nil {
			return uuid.UUID{}, nil, false
		}
		return q, &u, true
	}
	return q, nil, true
}
