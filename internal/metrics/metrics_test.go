// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/x", "200"))
	RecordAPIRequest("GET", "/x", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/x", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Fatalf("expected gauge to increment, got %v", got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("expected gauge to return to baseline, got %v", got)
	}
}

func TestTrackSSEStream(t *testing.T) {
	before := testutil.ToFloat64(OpenSSEStreams)
	TrackSSEStream(true)
	TrackSSEStream(true)
	TrackSSEStream(false)
	if got := testutil.ToFloat64(OpenSSEStreams); got != before+1 {
		t.Fatalf("expected net +1 open stream, got %v", got)
	}
}

func TestRecordCollectorFlush(t *testing.T) {
	beforeFlushes := testutil.ToFloat64(CollectorFlushesTotal)
	beforeEvents := testutil.ToFloat64(CollectorEventsTotal)
	RecordCollectorFlush(3)
	if got := testutil.ToFloat64(CollectorFlushesTotal); got != beforeFlushes+1 {
		t.Fatalf("expected flushes to increment by 1, got %v", got)
	}
	if got := testutil.ToFloat64(CollectorEventsTotal); got != beforeEvents+3 {
		t.Fatalf("expected events to increment by 3, got %v", got)
	}
}
