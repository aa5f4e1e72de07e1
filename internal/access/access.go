// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package access maps account roles to capability sets.
//
// Capabilities are colon-separated strings, resource first:
//   - "catalog:write"
//   - "inquiry:write"
//   - "account:01J9Z...:read"
//
// Role patterns are globs over the same alphabet, with ':' as separator, so
// "account:*:read" matches a single account segment and "**" matches
// everything. The token $self in a pattern is replaced with the caller's
// account ID before matching.
package access

import (
	"context"
	"strings"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// AccessControl decides whether an authenticated identity holds a capability.
//
//nolint:revive // AccessControl reads better at call sites than Control.
type AccessControl interface {
	// Check returns true if identity may exercise capability.
	// A nil identity is always denied.
	Check(ctx context.Context, identity *auth.Identity, capability string) bool
}

// ParseCapability splits a capability into its resource and the remainder.
// Returns (capability, "") if no colon separator is found.
func ParseCapability(capability string) (resource, rest string) {
	resource, rest, _ = strings.Cut(capability, ":")
	return resource, rest
}
