// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package store is the queue engine's persistence layer: an embedded
// DuckDB database opened over database/sql, with one transaction per
// request (spec.md §5) and DuckDB's native transaction-conflict detection
// reused as the writer-serialization mechanism SPEC_FULL.md §4.14
// documents as a deliberate substitution for original_source's
// Postgres/sqlx backend.
//
// Grounded on internal/database/database.go's connection-open idiom and
// internal/database/database_connection.go's error-classification helpers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/apelle/apelle/internal/logging"
)

// Store wraps the DuckDB connection pool used by the queue engine.
type Store struct {
	conn *sql.DB
}

// Config configures the embedded database file and pool tuning.
type Config struct {
	Path    string
	Threads int
}

// Open creates the parent directory if needed, opens the DuckDB file, tunes
// the connection pool, and runs pending migrations.
func Open(cfg Config) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf(
		"%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads,
	)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(threads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn}
	if err := s.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Tx is the request-scoped transaction every write handler runs in
// (spec.md §5: "every write handler acquires a connection and a transaction
// at entry ... commits on 2xx; on 4xx/5xx the transaction is rolled back").
type Tx struct {
	*sql.Tx
}

// Begin starts a new per-request transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{Tx: tx}, nil
}

// Commit commits the transaction, classifying a DuckDB conflict error as
// ErrConflict so the HTTP layer can map it consistently (spec.md §5: no
// pessimistic lock, writers serialize on the queue row at commit time).
func (tx *Tx) Commit() error {
	if err := tx.Tx.Commit(); err != nil {
		if isTransactionConflict(err) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}
	return nil
}

// Rollback discards the transaction; logged at debug since most rollbacks
// are simply "request returned 4xx", not an operational problem.
func (tx *Tx) Rollback() {
	if err := tx.Tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logging.Debug().Err(err).Msg("transaction rollback")
	}
}
