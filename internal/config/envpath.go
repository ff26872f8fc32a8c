// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package config

import "strings"

// toKoanfPath converts APELLE__CODE__MIN_BITS into code.min_bits: the
// EnvPrefix is stripped, "__" marks nesting, and each segment is
// lowercased as-is (so single underscores inside a segment, e.g.
// min_bits, survive unchanged).
func toKoanfPath(key string) string {
	trimmed := strings.TrimPrefix(key, EnvPrefix)
	if trimmed == key {
		return ""
	}
	segments := strings.Split(trimmed, "__")
	for i, s := range segments {
		segments[i] = strings.ToLower(s)
	}
	return strings.Join(segments, ".")
}
