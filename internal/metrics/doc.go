// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package metrics exposes Prometheus instrumentation for the queue and
// queue-events services: HTTP request latency/throughput, circuit breaker
// state, and the domain gauges SPEC_FULL.md §4.22 calls for — open SSE
// streams, broadcast-hub lag, and collector flush counts. Metrics are
// served at /metrics by each service's chi router through promhttp.Handler().
package metrics
