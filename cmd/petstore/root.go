// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wolvespetstore/petstore/internal/config"
	"github.com/wolvespetstore/petstore/internal/logging"
)

const serviceName = "petstore"

// NewRootCmd creates the root command. deps may be nil.
func NewRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "petstore",
		Short: "Pet store account server",
		Long: `petstore serves customer registration, login and sessions for the
pet store, and manages its database and account roles.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (YAML)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewAccountCmd(deps))
	cmd.AddCommand(NewSessionsCmd(deps))

	return cmd
}

// loadConfig layers the config file and flags of cmd into a validated Config.
func loadConfig(cmd *cobra.Command, deps *Deps) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	cfg, err := config.LoadWithEnv(path, cmd.Flags(), deps.Getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	// Validate already rejected unknown levels.
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)
	return logger
}
