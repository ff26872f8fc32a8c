// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "github.com/apelle/apelle/internal/middleware"
)

// chiMiddleware adapts the teacher's func(http.HandlerFunc) http.HandlerFunc
// middleware shape onto chi's func(http.Handler) http.Handler, the same
// bridge internal/api/chi_router.go uses for PrometheusMetrics.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the queue service's full HTTP surface (spec.md §6),
// grounded on the teacher's SetupChi idiom: request-id and recovery first,
// then CORS and rate limiting, then the route table.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(appmiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "If-Match", "If-None-Match", "If-Modified-Since", "If-Unmodified-Since", "X-Apelle-User-Id", "X-Apelle-User-Name", "X-Trace-Id"},
		ExposedHeaders:   []string{"ETag", "Last-Modified"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(chiMiddleware(appmiddleware.PrometheusMetrics))

	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Delete("/", s.Delete)
		r.Post("/enqueue", s.Enqueue)
		r.Post("/next", s.Next)
		r.Post("/songs/{song_id}/like", s.Like)
		r.Post("/push_sync_event", s.PushSyncEvent)
		r.Get("/events", s.Events)
	})

	return r
}
