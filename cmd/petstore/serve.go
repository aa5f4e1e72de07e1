// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wolvespetstore/petstore/internal/access"
	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/config"
	"github.com/wolvespetstore/petstore/internal/observability"
	"github.com/wolvespetstore/petstore/internal/web"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the account API",
		Long: `Serve the account API, the metrics and health endpoints, and the
background sweeper that deletes expired sessions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, deps)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, deps)
		},
	}
}

// runServe blocks until ctx is cancelled or a server fails.
func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, deps *Deps) error {
	logger := newLogger(cmd, cfg)
	logger.Info("starting petstore",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"session_ttl", cfg.Auth.SessionTTL.String(),
	)

	var (
		obsServer   *observability.Server
		authMetrics auth.Metrics
		reqMetrics  web.RequestRecorder
		onSweep     func(int64)
	)
	backendReady := func() bool { return false }
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool { return backendReady() }, logger)
		m := obsServer.Metrics()
		authMetrics, reqMetrics, onSweep = m, m, m.RecordSweep
	}

	backend, err := deps.BackendFactory(ctx, cfg, logger, authMetrics)
	if err != nil {
		return oops.Code("SERVE_FAILED").With("operation", "open backend").Wrap(err)
	}
	defer backend.Close()
	if backend.Ready != nil {
		backendReady = backend.Ready
	} else {
		backendReady = func() bool { return true }
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if obsServer != nil {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("SERVE_FAILED").With("operation", "start observability server").Wrap(err)
		}
		defer stopServer(logger, cfg, "observability", obsServer.Stop)
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
	}

	server, err := web.NewServer(backend.Service,
		web.WithLogger(logger),
		web.WithAccessControl(access.NewStaticAccessControl()),
		web.WithRequestRecorder(reqMetrics),
		web.WithCookieSecure(cfg.Auth.CookieSecure),
		web.WithReadHeaderTimeout(cfg.HTTP.ReadHeaderTimeout),
	)
	if err != nil {
		return oops.Code("SERVE_FAILED").With("operation", "build web server").Wrap(err)
	}
	webErrCh, err := server.Start(cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("SERVE_FAILED").With("operation", "start web server").Wrap(err)
	}
	defer stopServer(logger, cfg, "web", server.Stop)
	go monitorServerErrors(ctx, cancel, webErrCh, "web", logger)

	if cfg.Auth.SweepInterval > 0 {
		sweeper, err := auth.NewSweeper(backend.Service, cfg.Auth.SweepInterval, logger, onSweep)
		if err != nil {
			return oops.Code("SERVE_FAILED").With("operation", "build sweeper").Wrap(err)
		}
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	cmd.Println("petstore started")
	logger.Info("petstore ready", "http_addr", server.Addr())

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// monitorServerErrors cancels ctx when a server reports a failure.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string, logger *slog.Logger) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server failed", "server", name, "error", err)
			cancel()
		}
	}
}

func stopServer(logger *slog.Logger, cfg *config.Config, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}
