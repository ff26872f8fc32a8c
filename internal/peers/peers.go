// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package peers holds thin HTTP clients for the services that sit outside
// this project's core scope (spec.md §1): songs and configs. Both are
// read-mostly collaborators the queue engine calls into mid-request; errors
// from either map to 502 per spec.md §7, except the songs resolve call's
// 4xx, which is forwarded verbatim.
package peers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/apelle/apelle/internal/logging"
	"github.com/apelle/apelle/internal/middleware"
)

// PeerError wraps a failed peer-service call with enough information for
// the caller to decide between a verbatim passthrough and a flat 502.
type PeerError struct {
	Service    string
	StatusCode int
	Body       []byte
	Cause      error
}

func (e *PeerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("peers: %s unreachable: %v", e.Service, e.Cause)
	}
	return fmt.Sprintf("peers: %s returned %d", e.Service, e.StatusCode)
}

// Unreachable reports whether the call never got an HTTP response at all
// (connection refused, timeout, DNS) as opposed to an application-level
// error status.
func (e *PeerError) Unreachable() bool { return e.Cause != nil }

// newClient builds a resty client with the conventions every peer client in
// this package shares: bounded timeout, trace-id propagation (spec.md §6),
// and structured failure logging.
func newClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		OnError(func(req *resty.Request, err error) {
			logging.Error().Err(err).Str("url", req.URL).Msg("peer request failed")
		})
	return c
}

// withTrace forwards the request-scoped trace id onto an outbound request,
// matching the teacher's request-id propagation idiom
// (internal/middleware/requestid.go) generalized to peer HTTP calls.
func withTrace(ctx context.Context, req *resty.Request) *resty.Request {
	if id := middleware.GetRequestID(ctx); id != "" {
		req.SetHeader("X-Trace-Id", id)
	}
	return req.SetContext(ctx)
}

func asPeerError(service string, resp *resty.Response, err error) error {
	if err != nil {
		return &PeerError{Service: service, Cause: err}
	}
	if resp.IsError() {
		return &PeerError{Service: service, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return nil
}

// StatusCodeOrBadGateway maps a PeerError to the HTTP status the queues
// service should answer with: verbatim passthrough of the upstream's status
// when it responded at all, 502 when it could not be reached.
func StatusCodeOrBadGateway(err error) int {
	pe, ok := err.(*PeerError)
	if !ok {
		return http.StatusBadGateway
	}
	if pe.Unreachable() || pe.StatusCode == 0 {
		return http.StatusBadGateway
	}
	return pe.StatusCode
}
