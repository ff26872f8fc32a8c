// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/events"
)

// Dispatcher matches hub.Hub's Dispatch method, accepted by interface so
// this package does not need to import internal/events/hub.
type Dispatcher interface {
	Dispatch(queue uuid.UUID, user *uuid.UUID, content events.EventContent)
}

// SubscriberRunner matches events.Subscriber's Run lifecycle.
type SubscriberRunner interface {
	Run(ctx context.Context, dispatch func(queue uuid.UUID, user *uuid.UUID, content events.EventContent)) error
	Close() error
}

// SubscriberService wraps a *events.Subscriber as a supervised service,
// feeding every decoded message straight into the broadcast hub's Dispatch.
// Grounded on NATSComponentsService's Start/Shutdown-wrapping shape,
// adapted to the Subscriber's single blocking Run call instead of a
// separate Start/Shutdown pair.
type SubscriberService struct {
	subscriber SubscriberRunner
	dispatcher Dispatcher
	name       string
}

// NewSubscriberService builds the service the queue-events binary adds to
// its messaging-layer supervisor.
func NewSubscriberService(subscriber SubscriberRunner, dispatcher Dispatcher) *SubscriberService {
	return &SubscriberService{subscriber: subscriber, dispatcher: dispatcher, name: "events-subscriber"}
}

// Serve implements suture.Service: Run blocks until ctx is canceled or the
// subscription fails, at which point Close releases the NATS connection so
// a retry starts clean.
func (s *SubscriberService) Serve(ctx context.Context) error {
	err := s.subscriber.Run(ctx, s.dispatcher.Dispatch)
	if closeErr := s.subscriber.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("events subscriber: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *SubscriberService) String() string {
	return s.name
}
