// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package main is the entry point for the queue-events service: the
// per-queue SSE fan-out endpoint (spec.md §1, §4.6, §6).
//
// # Application Architecture
//
// main initializes components in the following order:
//
//  1. Configuration: layered koanf load (internal/config)
//  2. Logging: zerolog, configured from the loaded Logging settings
//  3. Broadcast hub: in-process pub/sub fan-out (internal/events/hub)
//  4. NATS subscriber: pattern-subscribes to every queue's channel
//     (internal/events), forwarding decoded messages into the hub
//  5. Queues client: a thin resty client used for push_sync_event
//     round-trips back to the queues service
//  6. SSE stream handler and router (internal/events/hub)
//  7. Supervisor tree: messaging layer runs the subscriber and the hub's
//     dispatch loop, api layer runs the HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown in the same order as the
// queues binary: stop accepting HTTP connections, then let the supervisor
// tear down the messaging layer.
package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/apelle/apelle/internal/config"
	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/events/hub"
	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/supervisor"
	"github.com/apelle/apelle/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(buildLoggingConfig(cfg.Logging))
	logging.Info().Msg("starting queue-events service")

	eventHub := hub.New()

	subscriber, err := events.NewSubscriber(events.SubscriberConfig{
		URL:           cfg.PubsubURL,
		QueueGroup:    cfg.Events.QueueGroup,
		DurableName:   cfg.Events.DurableName,
		MaxReconnects: cfg.Events.MaxReconnects,
	}, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect subscriber to NATS")
	}

	queuesClient := resty.New().
		SetBaseURL(cfg.EventsURL).
		SetTimeout(10 * time.Second)

	syncTimeout := time.Duration(cfg.Events.SyncTimeoutSeconds) * time.Second
	if syncTimeout <= 0 {
		syncTimeout = 2 * time.Second
	}

	streamHandler := &hub.StreamHandler{
		Hub:          eventHub,
		QueuesClient: queuesClient,
		SyncTimeout:  syncTimeout,
	}

	ln, err := cfg.Serve.Listener()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open listener")
	}

	server := &http.Server{
		Handler:      streamHandler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewSubscriberService(subscriber, eventHub))
	tree.AddMessagingService(services.NewHubService(eventHub))
	tree.AddAPIService(services.NewHTTPServerService(&listenerServer{Server: server, ln: ln}, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", ln.Addr().String()).Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
	}

	logging.Info().Msg("queue-events service stopped")
}

// listenerServer adapts http.Server to HTTPServerService's ListenAndServe
// expectation while actually serving a pre-opened listener, so a unix
// socket path from ServeConfig works the same as a TCP address.
type listenerServer struct {
	*http.Server
	ln net.Listener
}

func (l *listenerServer) ListenAndServe() error {
	return l.Server.Serve(l.ln)
}

// buildLoggingConfig translates the handful of logging options spec.md §6
// exposes into zerolog's richer Config, opening the log file if one is
// configured.
func buildLoggingConfig(cfg config.LoggingConfig) logging.Config {
	format := "json"
	if cfg.Console {
		format = "console"
	}
	out := io.Writer(os.Stderr)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			if cfg.Console {
				out = io.MultiWriter(os.Stderr, f)
			} else {
				out = f
			}
		} else {
			logging.Warn().Err(err).Str("file", cfg.File).Msg("failed to open log file, logging to stderr only")
		}
	}
	return logging.Config{
		Level:     "info",
		Format:    format,
		Timestamp: true,
		Output:    out,
	}
}
