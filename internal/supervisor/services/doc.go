// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

/*
Package services provides suture.Service wrappers for the queue and
queue-events binaries' long-running components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown.
  - Converts the ListenAndServe pattern to Serve.
  - Used by both the queues and queue-events binaries' API layer.

Events Subscriber (SubscriberService):
  - Wraps *events.Subscriber's Run call.
  - Feeds every decoded message into the broadcast hub's Dispatch.
  - Used by the queue-events binary's messaging layer.

Broadcast Hub (HubService):
  - Wraps *hub.Hub's Run dispatch loop.
  - Translates ctx cancellation into the stop-channel close Run expects.
  - Used by the queue-events binary's messaging layer, alongside
    SubscriberService.

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())

	httpSvc := services.NewHTTPServerService(server, 10*time.Second)
	tree.AddAPIService(httpSvc)

	subSvc := services.NewSubscriberService(subscriber, eventHub)
	tree.AddMessagingService(subSvc)

	hubSvc := services.NewHubService(eventHub)
	tree.AddMessagingService(hubSvc)

	tree.Serve(ctx)

# Error Handling

Return values determine supervisor behavior: suture restarts a service
that returns nil or an error (counting errors toward its backoff policy)
unless it returns suture.ErrDoNotRestart; ctx.Err() signals an ordinary
shutdown request.

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: underlying supervision library
  - internal/events, internal/events/hub: the wrapped components
*/
package services
