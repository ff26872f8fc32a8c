// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package config loads the queue and queue-events services' configuration
// from layered sources (spec.md §6): built-in defaults, an optional TOML
// file, environment variables prefixed APELLE__, and CLI -C overrides.
package config

// Config holds everything either service reads at startup. Both binaries
// load the same struct; each only looks at the fields it needs.
type Config struct {
	DBURL      string        `koanf:"db_url"`
	CacheURL   string        `koanf:"cache_url"`
	SongsURL   string        `koanf:"songs_url"`
	ConfigsURL string        `koanf:"configs_url"`
	EventsURL  string        `koanf:"events_url"`
	PubsubURL  string        `koanf:"pubsub_url"`
	Code       CodeConfig    `koanf:"code"`
	Serve      ServeConfig   `koanf:"serve"`
	Logging    LoggingConfig `koanf:"logging"`
	Events     EventsConfig  `koanf:"events"`
}

// CodeConfig controls the short human-typable queue-code generator
// (internal/queue/code).
type CodeConfig struct {
	Alphabet  string `koanf:"alphabet"`
	MinBits   int    `koanf:"min_bits"`
	RetryBits int    `koanf:"retry_bits"`
}

// ServeConfig is either a unix socket path or an ip:port pair; exactly one
// of Socket or IP+Port is expected to be set.
type ServeConfig struct {
	Socket string `koanf:"socket"`
	IP     string `koanf:"ip"`
	Port   int    `koanf:"port"`
}

// LoggingConfig selects structured-log destinations; either or both of
// File/Console may be set.
type LoggingConfig struct {
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}

// EventsConfig tunes the NATS subscriber and the per-client state machine
// the queue-events binary runs; the queues binary only reads MaxReconnects,
// for its publisher's NATS connection.
type EventsConfig struct {
	QueueGroup         string `koanf:"queue_group"`
	DurableName        string `koanf:"durable_name"`
	MaxReconnects      int    `koanf:"max_reconnects"`
	SyncTimeoutSeconds int    `koanf:"sync_timeout_seconds"`
}

func defaultConfig() *Config {
	return &Config{
		DBURL:      "queue.duckdb",
		CacheURL:   "/data/apelle/configcache",
		SongsURL:   "http://songs.apelle.internal",
		ConfigsURL: "http://configs.apelle.internal",
		EventsURL:  "http://queue-events.apelle.internal",
		PubsubURL:  "nats://nats.apelle.internal:4222",
		Code: CodeConfig{
			Alphabet:  "ABCDEFGHJKLMNPQRSTUVWXYZ23456789",
			MinBits:   24,
			RetryBits: 8,
		},
		Serve: ServeConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Console: true,
		},
		Events: EventsConfig{
			QueueGroup:         "queue-events",
			DurableName:        "queue-events",
			MaxReconnects:      -1,
			SyncTimeoutSeconds: 2,
		},
	}
}
