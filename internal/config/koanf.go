// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

// ConfigPathEnvVar overrides the searched config file path.
const ConfigPathEnvVar = "APELLE_CONFIG_PATH"

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"apelle.toml",
	"/etc/apelle/apelle.toml",
}

// EnvPrefix is the prefix environment variables must carry to be loaded;
// "__" separates nested keys, e.g. APELLE__CODE__MIN_BITS.
const EnvPrefix = "APELLE__"

// Load builds a Config from defaults, an optional TOML file, environment
// variables, and CLI -C overrides, in that precedence order (spec.md §6).
// flags is the CLI argument list (normally os.Args[1:]); pass nil to skip
// CLI parsing entirely.
func Load(flags []string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if flags != nil {
		fs, overrides := newFlagSet()
		if err := fs.Parse(flags); err != nil {
			return nil, fmt.Errorf("parse flags: %w", err)
		}
		for _, kv := range *overrides {
			if err := k.Set(kv[0], kv[1]); err != nil {
				return nil, fmt.Errorf("apply -C %s: %w", kv[0], err)
			}
		}
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// overrideList is a repeatable -C key.sub=value flag collected into raw
// koanf-path/value pairs and applied directly, since koanf's dotted paths
// don't map onto a single scalar pflag type.
type overrideList [][2]string

func (o *overrideList) String() string { return "" }

func (o *overrideList) Set(raw string) error {
	idx := indexByte(raw, '=')
	if idx < 0 {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	*o = append(*o, [2]string{raw[:idx], raw[idx+1:]})
	return nil
}

func (o *overrideList) Type() string { return "keyValue" }

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// newFlagSet builds the pflag set a binary's main() hands to Load: -C is
// the repeatable koanf-path override; everything else is a convenience
// flag mirroring a commonly-overridden config field, bound by posflag so
// an explicit flag wins over file/env but a default-valued flag does not
// mask them.
func newFlagSet() (*flag.FlagSet, *overrideList) {
	fs := flag.NewFlagSet("apelle", flag.ContinueOnError)
	overrides := &overrideList{}
	fs.VarP(overrides, "set", "C", "override a config key, e.g. -C code.min_bits=32")
	fs.String("db_url", "", "database URL or path")
	fs.String("songs_url", "", "songs service base URL")
	fs.String("configs_url", "", "configs service base URL")
	fs.String("pubsub_url", "", "NATS connection URL")
	return fs, overrides
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps APELLE__CODE__MIN_BITS to code.min_bits.
func envTransformFunc(key string) string {
	return toKoanfPath(key)
}
