// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package accesstest provides test helpers for access control.
package accesstest

import (
	"context"

	"github.com/wolvespetstore/petstore/internal/access"
	"github.com/wolvespetstore/petstore/internal/auth"
)

// AllowAll is an AccessControl that allows every authenticated identity.
type AllowAll struct{}

// Check returns true for any non-nil identity.
func (AllowAll) Check(_ context.Context, identity *auth.Identity, _ string) bool {
	return identity != nil
}

// DenyAll is an AccessControl that denies everything.
type DenyAll struct{}

// Check always returns false.
func (DenyAll) Check(_ context.Context, _ *auth.Identity, _ string) bool {
	return false
}

// MockAccessControl is an AccessControl for testing with selective grants
// keyed by role.
type MockAccessControl struct {
	grants map[auth.Role]map[string]bool
}

// NewMockAccessControl creates a new MockAccessControl.
func NewMockAccessControl() *MockAccessControl {
	return &MockAccessControl{
		grants: make(map[auth.Role]map[string]bool),
	}
}

// Grant allows role to exercise capability.
func (m *MockAccessControl) Grant(role auth.Role, capability string) {
	if m.grants[role] == nil {
		m.grants[role] = make(map[string]bool)
	}
	m.grants[role][capability] = true
}

// Check implements AccessControl.
func (m *MockAccessControl) Check(_ context.Context, identity *auth.Identity, capability string) bool {
	if identity == nil {
		return false
	}
	return m.grants[identity.Role][capability]
}

// Verify interfaces are satisfied.
var (
	_ access.AccessControl = AllowAll{}
	_ access.AccessControl = DenyAll{}
	_ access.AccessControl = (*MockAccessControl)(nil)
)
