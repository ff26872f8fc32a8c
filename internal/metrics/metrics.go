// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts every HTTP request handled by either service.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apelle_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration tracks request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apelle_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// APIActiveRequests is the number of requests currently in flight.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apelle_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// APIRateLimitHits counts rate-limit rejections reported through
	// RecordRateLimitHit. The httprate limiter in the queues router does not
	// call it; nothing in this repository does.
	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apelle_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState holds a named breaker's state as set through
	// SetCircuitBreakerState (0=closed, 1=half-open, 2=open). Neither it nor
	// CircuitBreakerRequests is fed by the events publisher's breaker: no
	// code in this repository calls their setters.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "apelle_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apelle_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// OpenSSEStreams is the number of live GET /events/{id} connections held
	// by the queue-events service.
	OpenSSEStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apelle_open_sse_streams",
			Help: "Current number of open SSE connections",
		},
	)

	// HubLaggedTotal counts Lagged(n) markers the broadcast hub has injected
	// into subscriber channels because a client fell behind.
	HubLaggedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apelle_hub_lagged_total",
			Help: "Total number of Lagged markers delivered to subscribers",
		},
	)

	// HubDisconnectionTotal counts Disconnection markers injected on an
	// upstream pub/sub reconnect.
	HubDisconnectionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apelle_hub_disconnection_total",
			Help: "Total number of Disconnection markers injected by the hub",
		},
	)

	// CollectorFlushesTotal counts request-scoped event collectors drained
	// into the publisher after a successful commit.
	CollectorFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apelle_collector_flushes_total",
			Help: "Total number of event collectors flushed to the publisher",
		},
	)

	// CollectorEventsTotal counts the individual events flushed, a finer
	// grain than CollectorFlushesTotal since one request can collect up to
	// five events.
	CollectorEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apelle_collector_events_total",
			Help: "Total number of events flushed from request collectors",
		},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCircuitBreakerResult records one call through a named breaker.
func RecordCircuitBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// SetCircuitBreakerState sets a named breaker's current state.
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordHubLagged records one Lagged marker delivered to a subscriber.
func RecordHubLagged() {
	HubLaggedTotal.Inc()
}

// RecordHubDisconnection records one Disconnection marker injected by the hub.
func RecordHubDisconnection() {
	HubDisconnectionTotal.Inc()
}

// TrackSSEStream increments or decrements the open-stream gauge.
func TrackSSEStream(inc bool) {
	if inc {
		OpenSSEStreams.Inc()
	} else {
		OpenSSEStreams.Dec()
	}
}

// RecordCollectorFlush records one request's collected events being
// published after commit.
func RecordCollectorFlush(eventCount int) {
	CollectorFlushesTotal.Inc()
	CollectorEventsTotal.Add(float64(eventCount))
}
