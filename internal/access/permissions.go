// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package access

import "github.com/wolvespetstore/petstore/internal/auth"

// Permission groups define reusable sets of capabilities.
// Roles compose these groups rather than inheriting.

var customerPowers = []string{
	// Browsing and adoption inquiries
	"catalog:read",
	"inquiry:write",

	// Own account only
	"account:$self:read",
	"account:$self:write",
}

var adminPowers = []string{
	"**",
}

// DefaultRoles returns the default role definitions.
func DefaultRoles() map[auth.Role][]string {
	return map[auth.Role][]string{
		auth.RoleCustomer: customerPowers,
		auth.RoleAdmin:    compose(customerPowers, adminPowers),
	}
}

// compose merges multiple capability slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
