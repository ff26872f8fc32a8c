// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testDBSemaphore serializes DuckDB connection setup across tests in this
// package, grounded on internal/database/database_test.go's setupTestDB:
// concurrent CGO connection creation is what causes hangs under CI load, not
// concurrent use of an already-open connection.
var testDBSemaphore = make(chan struct{}, 1)
var testDBMutex sync.Mutex

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	type result struct {
		s   *Store
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		s, err := Open(Config{Path: ":memory:"})
		testDBMutex.Unlock()
		resultCh <- result{s: s, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("failed to open test store: %v", res.err)
		}
		t.Cleanup(func() { _ = res.s.Close() })
		return res.s
	case <-time.After(30 * time.Second):
		t.Fatal("timed out opening an in-memory store")
		return nil
	}
}

func TestOpen_RunsMigrationsIdempotently(t *testing.T) {
	s := setupTestStore(t)

	// Re-running migrate against an already-migrated store must be a no-op.
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate call failed: %v", err)
	}
}

func TestCreateQueue_And_GetETag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, configID, playerStateID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.CreateQueue(ctx, id, "ABCD1234", configID, playerStateID, now); err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx2, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx2.Rollback()

	etag, err := tx2.GetETag(ctx, id)
	if err != nil {
		t.Fatalf("GetETag: %v", err)
	}
	if etag.PlayerStateID != playerStateID {
		t.Errorf("PlayerStateID = %v, want %v", etag.PlayerStateID, playerStateID)
	}

	gotConfigID, err := tx2.GetConfigID(ctx, id)
	if err != nil {
		t.Fatalf("GetConfigID: %v", err)
	}
	if gotConfigID != configID {
		t.Errorf("GetConfigID = %v, want %v", gotConfigID, configID)
	}

	taken, err := tx2.CodeTaken(ctx, "ABCD1234")
	if err != nil {
		t.Fatalf("CodeTaken: %v", err)
	}
	if !taken {
		t.Error("expected CodeTaken(\"ABCD1234\") = true")
	}

	free, err := tx2.CodeTaken(ctx, "ZZZZ0000")
	if err != nil {
		t.Fatalf("CodeTaken: %v", err)
	}
	if free {
		t.Error("expected CodeTaken(\"ZZZZ0000\") = false")
	}
}

func TestGetETag_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.GetETag(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBump_ChangesPlayerStateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createTestQueue(t, s)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	before, err := tx.GetETag(ctx, id)
	if err != nil {
		t.Fatalf("GetETag: %v", err)
	}

	after, err := tx.Bump(ctx, id, time.Now().UTC())
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if after.PlayerStateID == before.PlayerStateID {
		t.Error("expected Bump to mint a new player_state_id")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestBump_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Bump(ctx, uuid.New(), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteQueue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createTestQueue(t, s)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.DeleteQueue(ctx, id); err != nil {
		t.Fatalf("DeleteQueue: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx2, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx2.Rollback()
	if _, err := tx2.GetETag(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestDeleteQueue_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if err := tx.DeleteQueue(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetCurrentPlayingAndClearCurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := createTestQueue(t, s)

	song, queuedBy, playerState := uuid.New(), uuid.New(), uuid.New()
	startAt := time.Now().UTC().Truncate(time.Microsecond)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.SetCurrentPlaying(ctx, id, song, queuedBy, startAt); err != nil {
		t.Fatalf("SetCurrentPlaying: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx2, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	current, err := tx2.GetCurrent(ctx, id, playerState)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current == nil {
		t.Fatal("expected a non-nil Current after SetCurrentPlaying")
	}
	if current.Paused() {
		t.Error("expected a Playing current, not Paused")
	}
	if got, ok := current.RawStartsAt(); !ok || !got.Equal(startAt) {
		t.Errorf("RawStartsAt() = %v, %v; want %v, true", got, ok, startAt)
	}
	tx2.Rollback()

	tx3, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx3.ClearCurrent(ctx, id); err != nil {
		t.Fatalf("ClearCurrent: %v", err)
	}
	if err := tx3.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx4, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx4.Rollback()
	cleared, err := tx4.GetCurrent(ctx, id, playerState)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cleared != nil {
		t.Errorf("expected nil Current after ClearCurrent, got %+v", cleared)
	}
}

// createTestQueue inserts and commits a minimal queue row, returning its ID.
func createTestQueue(t *testing.T, s *Store) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.CreateQueue(ctx, id, uuid.NewString()[:8], uuid.New(), uuid.New(), time.Now().UTC()); err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return id
}
