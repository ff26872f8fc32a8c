// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

// Package config layers configuration sources in precedence order:
// built-in defaults, an optional TOML file (apelle.toml, searched in
// DefaultConfigPaths or pointed at by APELLE_CONFIG_PATH), environment
// variables prefixed APELLE__ with "__" as the nesting separator, and
// finally CLI -C key.sub=value overrides. Call Load from each binary's
// main with os.Args[1:].
package config
