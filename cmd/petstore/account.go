// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// NewAccountCmd creates the account subcommand. Role changes are made here,
// out of band, and never through the HTTP API.
func NewAccountCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Administer customer accounts",
	}
	cmd.AddCommand(newRoleCmd(deps, "grant-admin", "Give an account the admin role", auth.RoleAdmin))
	cmd.AddCommand(newRoleCmd(deps, "revoke-admin", "Return an account to the customer role", auth.RoleCustomer))
	return cmd
}

func newRoleCmd(deps *Deps, use, short string, role auth.Role) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return oops.Code("CONFIG_INVALID").With("field", "email").Errorf("--email is required")
			}
			return withBackend(cmd, deps, func(b *Backend) error {
				account, err := b.Service.SetRole(cmd.Context(), email, role)
				if err != nil {
					return err
				}
				cmd.Printf("Account %s (%s) now has role %s\n", account.Email, account.ID, account.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the account")
	return cmd
}

// withBackend opens the backend for a one-shot command, runs fn and closes it.
func withBackend(cmd *cobra.Command, deps *Deps, fn func(*Backend) error) error {
	cfg, err := loadConfig(cmd, deps)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	backend, err := deps.BackendFactory(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return oops.Code("BACKEND_INIT_FAILED").With("operation", "open backend").Wrap(err)
	}
	defer backend.Close()
	return fn(backend)
}
