// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package config

import (
	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here (such as --config) are not configuration values.
var flagKeys = map[string]string{
	"http-addr":      "http.addr",
	"metrics-addr":   "metrics.addr",
	"database-url":   "database.url",
	"session-ttl":    "auth.session_ttl",
	"sweep-interval": "auth.sweep_interval",
	"cookie-secure":  "auth.cookie_secure",
	"log-format":     "log.format",
	"log-level":      "log.level",
}

// RegisterFlags defines the configuration flags on fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("http-addr", d.HTTP.Addr, "public API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", "", "Postgres connection URL (default: $DATABASE_URL)")
	fs.Duration("session-ttl", d.Auth.SessionTTL, "session lifetime")
	fs.Duration("sweep-interval", d.Auth.SweepInterval, "expired session sweep interval (0 = disabled)")
	fs.Bool("cookie-secure", d.Auth.CookieSecure, "mark the session cookie Secure")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
}

func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
