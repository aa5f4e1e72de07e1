// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
	authpg "github.com/wolvespetstore/petstore/internal/auth/postgres"
	"github.com/wolvespetstore/petstore/internal/config"
	"github.com/wolvespetstore/petstore/internal/observability"
	"github.com/wolvespetstore/petstore/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values use their default implementations.
type Deps struct {
	// BackendFactory opens the database and builds the auth service.
	// Default: openBackend
	BackendFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics auth.Metrics) (*Backend, error)

	// MigratorFactory creates a schema migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// Getenv reads environment variables.
	// Default: os.Getenv
	Getenv func(string) string
}

// Backend is a ready auth service and the resources behind it.
type Backend struct {
	Service *auth.Service
	Ready   observability.ReadinessChecker
	Close   func()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (*store.MigrationStatus, error)
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.BackendFactory == nil {
		out.BackendFactory = openBackend
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	return &out
}

// openBackend connects to Postgres and wires the repositories, hasher and
// service from cfg.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics auth.Metrics) (*Backend, error) {
	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		MaxConns:       cfg.Database.MaxConns,
		ConnectRetries: cfg.Database.ConnectRetries,
		RetryBase:      cfg.Database.RetryBase,
	}, logger)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewArgon2idHasherWithParams(cfg.Auth.HashParams())
	if err != nil {
		pool.Close()
		return nil, err
	}

	opts := []auth.Option{
		auth.WithLogger(logger),
		auth.WithSessionTTL(cfg.Auth.SessionTTL),
	}
	if metrics != nil {
		opts = append(opts, auth.WithMetrics(metrics))
	}

	svc, err := auth.NewAuthService(
		authpg.NewAccountRepository(pool),
		authpg.NewSessionRepository(pool),
		hasher,
		opts...,
	)
	if err != nil {
		pool.Close()
		return nil, oops.Code("BACKEND_INIT_FAILED").Wrap(err)
	}

	return &Backend{
		Service: svc,
		Ready:   store.ReadinessCheck(pool, 2*time.Second),
		Close:   pool.Close,
	}, nil
}
