// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package code generates the short, human-typeable queue codes
// (SPEC_FULL.md's config surface: code.alphabet, code.min_bits,
// code.retry_bits). There is no third-party candidate for this in the
// reference corpus; it is a small, self-contained use of crypto/rand that
// does not warrant pulling in a dependency.
package code

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
)

// Config controls code length and character set.
type Config struct {
	// Alphabet is the set of characters a code may be drawn from.
	Alphabet string
	// MinBits is the minimum entropy a generated code must carry; the
	// code length is derived from it and the alphabet size.
	MinBits int
	// RetryBits is added to the length on each collision retry, widening
	// the space rather than retrying forever at a fixed length.
	RetryBits int
}

// DefaultConfig matches the values original_source ships by default.
func DefaultConfig() Config {
	return Config{
		Alphabet:  "ABCDEFGHJKLMNPQRSTUVWXYZ23456789",
		MinBits:   24,
		RetryBits: 8,
	}
}

// Generator produces codes whose length grows with the attempt number passed
// to Generate, so a caller retrying after a uniqueness conflict gets a wider
// space each time. The Generator itself keeps no state between calls.
type Generator struct {
	cfg Config
}

// New builds a Generator from cfg, falling back to DefaultConfig fields
// left zero-valued.
func New(cfg Config) *Generator {
	if cfg.Alphabet == "" {
		cfg.Alphabet = DefaultConfig().Alphabet
	}
	if cfg.MinBits <= 0 {
		cfg.MinBits = DefaultConfig().MinBits
	}
	if cfg.RetryBits <= 0 {
		cfg.RetryBits = DefaultConfig().RetryBits
	}
	return &Generator{cfg: cfg}
}

// Generate returns a random code with at least minBits + attempt*retryBits
// of entropy, where attempt is 0 on the first try.
func (g *Generator) Generate(attempt int) (string, error) {
	bits := g.cfg.MinBits + attempt*g.cfg.RetryBits
	bitsPerChar := math.Log2(float64(len(g.cfg.Alphabet)))
	length := int(math.Ceil(float64(bits) / bitsPerChar))
	if length < 1 {
		length = 1
	}

	n := big.NewInt(int64(len(g.cfg.Alphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		out[i] = g.cfg.Alphabet[idx.Int64()]
	}
	return string(out), nil
}
