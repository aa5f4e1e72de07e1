// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package access

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// selfToken is replaced with the caller's account ID.
const selfToken = "$self"

// StaticAccessControl implements AccessControl with fixed role definitions.
// It is immutable after construction and safe for concurrent use.
type StaticAccessControl struct {
	roles map[auth.Role][]compiledPermission
}

// compiledPermission holds a capability pattern and its compiled glob.
// Patterns containing $self are compiled per check.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewStaticAccessControl creates an access controller with DefaultRoles.
//
// Panics if the default roles contain invalid patterns (programming error).
func NewStaticAccessControl() *StaticAccessControl {
	ac, err := NewStaticAccessControlWithRoles(DefaultRoles())
	if err != nil {
		panic("invalid capability pattern in DefaultRoles: " + err.Error())
	}
	return ac
}

// NewStaticAccessControlWithRoles creates an access controller with custom roles.
// Returns error if a role is unknown or a pattern fails to compile.
func NewStaticAccessControlWithRoles(roles map[auth.Role][]string) (*StaticAccessControl, error) {
	compiledRoles := make(map[auth.Role][]compiledPermission, len(roles))
	for role, perms := range roles {
		if !role.Valid() {
			return nil, oops.In("access").
				Code("UNKNOWN_ROLE").
				With("role", string(role)).
				New("unknown role")
		}
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			g, err := glob.Compile(strings.ReplaceAll(p, selfToken, "self"), ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", string(role)).
					With("pattern", p).
					Wrap(err)
			}
			cp := compiledPermission{pattern: p}
			if !strings.Contains(p, selfToken) {
				cp.glob = g
			}
			compiled = append(compiled, cp)
		}
		compiledRoles[role] = compiled
	}
	return &StaticAccessControl{roles: compiledRoles}, nil
}

// Check implements AccessControl.
func (s *StaticAccessControl) Check(ctx context.Context, identity *auth.Identity, capability string) bool {
	if identity == nil || capability == "" {
		return false
	}

	permissions := s.roles[identity.Role]
	if permissions == nil {
		return false
	}

	self := identity.AccountID.String()
	for _, perm := range permissions {
		if perm.glob != nil {
			if perm.glob.Match(capability) {
				return true
			}
			continue
		}
		resolved := strings.ReplaceAll(perm.pattern, selfToken, self)
		g, err := glob.Compile(resolved, ':')
		if err != nil {
			slog.WarnContext(ctx, "failed to compile resolved capability pattern",
				"pattern", perm.pattern,
				"resolved", resolved,
				"error", err)
			continue
		}
		if g.Match(capability) {
			return true
		}
	}

	resource, _ := ParseCapability(capability)
	slog.DebugContext(ctx, "capability denied",
		"account_id", self,
		"role", string(identity.Role),
		"resource", resource,
		"capability", capability)
	return false
}
