// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package config

import (
	"fmt"
	"net"
	"os"
)

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return fmt.Errorf("db_url is required")
	}
	if c.SongsURL == "" {
		return fmt.Errorf("songs_url is required")
	}
	if c.ConfigsURL == "" {
		return fmt.Errorf("configs_url is required")
	}
	if c.PubsubURL == "" {
		return fmt.Errorf("pubsub_url is required")
	}
	if err := c.Code.validate(); err != nil {
		return fmt.Errorf("code: %w", err)
	}
	if err := c.Serve.validate(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (c *CodeConfig) validate() error {
	if c.Alphabet == "" {
		return fmt.Errorf("alphabet must not be empty")
	}
	if c.MinBits <= 0 {
		return fmt.Errorf("min_bits must be positive, got %d", c.MinBits)
	}
	if c.RetryBits < 0 {
		return fmt.Errorf("retry_bits must not be negative, got %d", c.RetryBits)
	}
	return nil
}

func (c *ServeConfig) validate() error {
	if c.Socket != "" {
		return nil
	}
	if c.IP == "" {
		return fmt.Errorf("either socket or ip must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}

// Listener opens the listener Serve names: a unix socket if Socket is set,
// otherwise a TCP listener on IP:Port. A stale socket file is removed first
// since a clean shutdown doesn't always unlink it.
func (c ServeConfig) Listener() (net.Listener, error) {
	if c.Socket != "" {
		if err := os.Remove(c.Socket); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale socket %s: %w", c.Socket, err)
		}
		return net.Listen("unix", c.Socket)
	}
	return net.Listen("tcp", fmt.Sprintf("%s:%d", c.IP, c.Port))
}
