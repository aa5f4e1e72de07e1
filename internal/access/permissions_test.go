// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolvespetstore/petstore/internal/access"
	"github.com/wolvespetstore/petstore/internal/auth"
)

func TestDefaultRoles(t *testing.T) {
	roles := access.DefaultRoles()

	require.Contains(t, roles, auth.RoleCustomer)
	require.Contains(t, roles, auth.RoleAdmin)
	assert.Len(t, roles, 2)

	assert.Contains(t, roles[auth.RoleCustomer], "catalog:read")
	assert.Contains(t, roles[auth.RoleCustomer], "inquiry:write")
	assert.Contains(t, roles[auth.RoleCustomer], "account:$self:read")
	assert.NotContains(t, roles[auth.RoleCustomer], "**")

	assert.Contains(t, roles[auth.RoleAdmin], "**")
}

func TestRoleComposition(t *testing.T) {
	roles := access.DefaultRoles()

	for _, perm := range roles[auth.RoleCustomer] {
		assert.Contains(t, roles[auth.RoleAdmin], perm, "admin should include customer capability: %s", perm)
	}
}
