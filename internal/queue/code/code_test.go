// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package code

import (
	"strings"
	"testing"
)

func TestNew_FillsZeroValuesFromDefaults(t *testing.T) {
	g := New(Config{})
	if g.cfg.Alphabet != DefaultConfig().Alphabet {
		t.Errorf("Alphabet = %q, want default", g.cfg.Alphabet)
	}
	if g.cfg.MinBits != DefaultConfig().MinBits {
		t.Errorf("MinBits = %d, want default", g.cfg.MinBits)
	}
	if g.cfg.RetryBits != DefaultConfig().RetryBits {
		t.Errorf("RetryBits = %d, want default", g.cfg.RetryBits)
	}
}

func TestGenerate_UsesOnlyAlphabetCharacters(t *testing.T) {
	g := New(DefaultConfig())

	code, err := g.Generate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range code {
		if !strings.ContainsRune(DefaultConfig().Alphabet, c) {
			t.Errorf("code %q contains character %q outside the alphabet", code, c)
		}
	}
}

func TestGenerate_LengthGrowsWithAttempt(t *testing.T) {
	g := New(DefaultConfig())

	first, err := g.Generate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.Generate(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(second) <= len(first) {
		t.Errorf("len(second) = %d, want > len(first) = %d", len(second), len(first))
	}
}

func TestGenerate_IsRandom(t *testing.T) {
	g := New(DefaultConfig())

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := g.Generate(0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 15 {
		t.Errorf("only %d unique codes out of 20 generated, expected high uniqueness", len(seen))
	}
}

func TestGenerate_SingleCharacterAlphabet(t *testing.T) {
	g := New(Config{Alphabet: "A", MinBits: 8, RetryBits: 8})

	code, err := g.Generate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != strings.Repeat("A", len(code)) {
		t.Errorf("code = %q, want all 'A'", code)
	}
}
