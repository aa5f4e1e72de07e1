// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewSessionsCmd creates the sessions subcommand.
func NewSessionsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain login sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions once",
		Long: `Delete every session whose expiry has passed. The server does this on
its sweep interval; this command runs one cycle on demand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, deps, func(b *Backend) error {
				deleted, err := b.Service.SweepExpired(cmd.Context())
				if err != nil {
					return oops.Code("SWEEP_FAILED").Wrap(err)
				}
				cmd.Printf("Deleted %d expired session(s)\n", deleted)
				return nil
			})
		},
	})
	return cmd
}
