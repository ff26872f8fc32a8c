// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package store

import (
	"errors"
	"strings"
)

// ErrConflict is returned by Tx.Commit when DuckDB detects a write-write
// conflict on the queue row — the substitute for the Postgres row lock
// original_source relies on (SPEC_FULL.md §4.14).
var ErrConflict = errors.New("store: transaction conflict")

// ErrNotFound is returned by lookups with no matching row.
var ErrNotFound = errors.New("store: not found")

// isTransactionConflict matches DuckDB's conflict error classes, grounded
// on internal/database/database_connection.go's isTransactionConflict.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Transaction conflict") ||
		strings.Contains(s, "Conflict on update") ||
		strings.Contains(s, "cannot update a table that has been altered")
}

// isConnectionError matches DuckDB/driver-level connection loss, grounded
// on the same helper file.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "bad connection") ||
		strings.Contains(s, "database is closed")
}
