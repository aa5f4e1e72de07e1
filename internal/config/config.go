// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package config loads pet store configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// command-line flags that were explicitly set. database.url falls back to
// the DATABASE_URL environment variable when no layer sets it.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	MaxConns       int32         `koanf:"max_conns"`
	ConnectRetries uint64        `koanf:"connect_retries"`
	RetryBase      time.Duration `koanf:"retry_base"`
}

// AuthConfig configures sessions and password hashing.
type AuthConfig struct {
	SessionTTL    time.Duration `koanf:"session_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"` // 0 disables the background sweeper
	CookieSecure  bool          `koanf:"cookie_secure"`
	HashTime      uint32        `koanf:"hash_time"`
	HashMemoryKiB uint32        `koanf:"hash_memory_kib"`
	HashThreads   uint8         `koanf:"hash_threads"`
}

// HashParams returns the argon2id parameters described by the config.
func (a AuthConfig) HashParams() auth.HashParams {
	p := auth.DefaultHashParams
	p.Time = a.HashTime
	p.Memory = a.HashMemoryKiB
	p.Threads = a.HashThreads
	return p
}

// LogConfig configures the process logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			ConnectRetries: 5,
			RetryBase:      500 * time.Millisecond,
		},
		Auth: AuthConfig{
			SessionTTL:    auth.SessionTokenExpiry,
			SweepInterval: auth.DefaultSweepInterval,
			CookieSecure:  true,
			HashTime:      auth.DefaultHashParams.Time,
			HashMemoryKiB: auth.DefaultHashParams.Memory,
			HashThreads:   auth.DefaultHashParams.Threads,
		},
		Log: LogConfig{
			Format: logging.FormatJSON,
			Level:  "info",
		},
	}
}

// defaultValues flattens Defaults into koanf keys.
func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"http.addr":                d.HTTP.Addr,
		"http.read_header_timeout": d.HTTP.ReadHeaderTimeout,
		"http.shutdown_timeout":    d.HTTP.ShutdownTimeout,
		"metrics.addr":             d.Metrics.Addr,
		"database.url":             d.Database.URL,
		"database.max_conns":       d.Database.MaxConns,
		"database.connect_retries": d.Database.ConnectRetries,
		"database.retry_base":      d.Database.RetryBase,
		"auth.session_ttl":         d.Auth.SessionTTL,
		"auth.sweep_interval":      d.Auth.SweepInterval,
		"auth.cookie_secure":       d.Auth.CookieSecure,
		"auth.hash_time":           d.Auth.HashTime,
		"auth.hash_memory_kib":     d.Auth.HashMemoryKiB,
		"auth.hash_threads":        d.Auth.HashThreads,
		"log.format":               d.Log.Format,
		"log.level":                d.Log.Level,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty) and flags. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	return LoadWithEnv(path, flags, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, flags *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaultValues() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}

	if cfg.Database.URL == "" && getenv != nil {
		cfg.Database.URL = getenv("DATABASE_URL")
	}
	return &cfg, nil
}
