// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package config

import (
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/logging"
)

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.HTTP.Addr == "" {
		return invalid("http.addr", "http.addr is required")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return invalid("http.shutdown_timeout", "http.shutdown_timeout must be positive")
	}
	if cfg.Database.URL == "" {
		return invalid("database.url", "database.url or DATABASE_URL is required")
	}
	if cfg.Database.MaxConns <= 0 {
		return invalid("database.max_conns", "database.max_conns must be positive")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return invalid("auth.session_ttl", "auth.session_ttl must be positive")
	}
	if cfg.Auth.SweepInterval < 0 {
		return invalid("auth.sweep_interval", "auth.sweep_interval cannot be negative")
	}
	if cfg.Auth.HashTime == 0 || cfg.Auth.HashMemoryKiB == 0 || cfg.Auth.HashThreads == 0 {
		return invalid("auth.hash_*", "argon2id time, memory and threads must be positive")
	}
	if !logging.ValidFormat(cfg.Log.Format) {
		return invalid("log.format", "log.format must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return invalid("log.level", "log.level must be debug, info, warn or error")
	}
	return nil
}

func invalid(field, msg string) error {
	return oops.Code("CONFIG_INVALID").With("field", field).Errorf("%s", msg)
}
