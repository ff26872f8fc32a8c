// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package services

import "context"

// HubRunner matches hub.Hub's Run lifecycle: a single blocking loop that
// exits once its stop channel closes.
type HubRunner interface {
	Run(stop <-chan struct{})
}

// HubService wraps the broadcast hub's dispatch loop as a supervised
// service, translating ctx cancellation into the stop-channel close Run
// expects. Grounded on NATSComponentsService's context-to-lifecycle
// adaptation shape.
type HubService struct {
	hub  HubRunner
	name string
}

// NewHubService builds the service the queue-events binary adds to its
// messaging-layer supervisor, alongside SubscriberService.
func NewHubService(hub HubRunner) *HubService {
	return &HubService{hub: hub, name: "events-hub"}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.hub.Run(stop)
		close(done)
	}()

	<-ctx.Done()
	close(stop)
	<-done
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *HubService) String() string {
	return s.name
}
