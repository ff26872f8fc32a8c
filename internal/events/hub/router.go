// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package hub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "github.com/apelle/apelle/internal/middleware"
)

// chiMiddleware adapts the func(http.HandlerFunc) http.HandlerFunc
// middleware shape onto chi's func(http.Handler) http.Handler, the same
// bridge internal/queue/handlers/router.go uses.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the queue-events service's HTTP surface (spec.md §4.6):
// one SSE route per queue, grounded on the same chi/CORS/middleware stack
// internal/queue/handlers/router.go uses for the sibling service.
func (h *StreamHandler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(appmiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"X-Apelle-User-Id", "X-Apelle-User-Name", "X-Trace-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware(appmiddleware.PrometheusMetrics))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/events/{id}", h.ServeHTTP)

	return r
}
