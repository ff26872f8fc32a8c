// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package main is the entry point for the queues service: the HTTP API
// that owns queue state and the per-request event collector (spec.md §1,
// §4, §6).
//
// # Application Architecture
//
// main initializes components in the following order:
//
//  1. Configuration: layered koanf load (internal/config)
//  2. Logging: zerolog, configured from the loaded Logging settings
//  3. Store: DuckDB, opened and migrated (internal/queue/store)
//  4. Config cache: embedded badger store backing the configs client
//  5. Peer clients: songs and configs service HTTP clients (internal/peers)
//  6. Role resolver: config+role resolution (internal/queue/role)
//  7. Queue codes: short-code generator (internal/queue/code)
//  8. Event publisher: NATS connection, circuit-broken (internal/events)
//  9. HTTP handlers and router (internal/queue/handlers)
//  10. Supervisor tree: the HTTP server under the api layer
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server stops
// accepting new connections and waits for in-flight requests (bounded by
// the supervisor's ShutdownTimeout) before the process exits.
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

	"github.com/apelle/apelle/internal/config"
	"github.com/apelle/apelle/internal/events"
	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/peers"
	"github.com/apelle/apelle/internal/peers/configcache"
	"github.com/apelle/apelle/internal/queue/code"
	"github.com/apelle/apelle/internal/queue/handlers"
	"github.com/apelle/apelle/internal/queue/role"
	"github.com/apelle/apelle/internal/queue/store"
	"github.com/apelle/apelle/internal/supervisor"
	"github.com/apelle/apelle/internal/supervisor/services"
)

const peerTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(buildLoggingConfig(cfg.Logging))
	logging.Info().Msg("starting queues service")

	db, err := store.Open(store.Config{Path: cfg.DBURL})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing store")
		}
	}()

	cache, err := configcache.Open(cfg.CacheURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open config cache")
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing config cache")
		}
	}()

	songs := peers.NewSongsClient(cfg.SongsURL, peerTimeout)
	configs := peers.NewConfigsClient(cfg.ConfigsURL, peerTimeout, cache)
	roles := role.New(configs)
	codes := code.New(code.Config{
		Alphabet:  cfg.Code.Alphabet,
		MinBits:   cfg.Code.MinBits,
		RetryBits: cfg.Code.RetryBits,
	})

	publisher, err := events.NewPublisher(events.PublisherConfig{
		URL:           cfg.PubsubURL,
		MaxReconnects: cfg.Events.MaxReconnects,
	}, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect publisher to NATS")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing publisher")
		}
	}()

	svc := &handlers.Service{
		Store:         db,
		Roles:         roles,
		Songs:         songs,
		Configs:       configs,
		Publisher:     publisher,
		Codes:         codes,
		EventsBaseURL: cfg.EventsURL,
	}

	ln, err := cfg.Serve.Listener()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open listener")
	}

	server := &http.Server{
		Handler:      svc.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

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

	logging.Info().Msg("queues service stopped")
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
