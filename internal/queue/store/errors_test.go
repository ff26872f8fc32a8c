// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package store

import (
	"errors"
	"testing"
)

func TestIsTransactionConflict(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Transaction conflict: write-write"), true},
		{errors.New("Conflict on update of queue row"), true},
		{errors.New("cannot update a table that has been altered"), true},
		{errors.New("syntax error near SELECT"), false},
	}
	for _, c := range cases {
		if got := isTransactionConflict(c.err); got != c.want {
			t.Errorf("isTransactionConflict(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("driver: bad connection"), true},
		{errors.New("sql: database is closed"), true},
		{errors.New("syntax error near SELECT"), false},
	}
	for _, c := range cases {
		if got := isConnectionError(c.err); got != c.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
