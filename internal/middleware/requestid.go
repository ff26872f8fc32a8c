// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/apelle/apelle/internal/logging"
)

type contextKey string

// RequestIDKey is the context key the RequestID middleware stores under.
const RequestIDKey contextKey = "request_id"

// RequestID generates (or propagates, from X-Request-ID) a per-request
// trace id, sets it on the response and on the context, and wires it into
// the logging package's correlation id so every log line for a request can
// be grepped together. Grounded on the teacher's request-id middleware,
// adapted to chi's func(http.Handler) http.Handler convention.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request id stashed by RequestID, or "" if the
// middleware hasn't run (e.g. a background job context).
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
