// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the privilege level of an account.
type Role string

// Known roles. New accounts are customers; admin is granted out of band.
const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", oops.Code("AUTH_UNKNOWN_ROLE").With("role", s).Errorf("unknown role %q", s)
	}
	return r, nil
}

// Profile holds the optional, owner-editable account attributes.
type Profile struct {
	DisplayName string
	FirstName   string
	LastName    string
}

// Account represents a storefront account.
type Account struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string `json:"-"`
	Profile      Profile
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount creates a validated customer Account.
// The email is normalized; the hash must already be computed.
func NewAccount(email, passwordHash string, profile Profile, now time.Time) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	return &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Profile:      profile,
		Role:         RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAdmin reports whether the account holds the elevated privilege.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Identity returns the session snapshot for this account.
func (a *Account) Identity() Identity {
	return Identity{
		AccountID:   a.ID,
		Email:       a.Email,
		DisplayName: a.Profile.DisplayName,
		Role:        a.Role,
	}
}

// PublicAccount is the outward projection of an Account. It has no
// verifier field, so it can be serialized to any caller.
type PublicAccount struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Public returns the public projection of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:          a.ID.String(),
		Email:       a.Email,
		DisplayName: a.Profile.DisplayName,
		FirstName:   a.Profile.FirstName,
		LastName:    a.Profile.LastName,
		IsAdmin:     a.IsAdmin(),
		Role:        a.Role,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// NormalizeEmail trims and lower-cases an email address. Create and lookup
// both go through it, so email matching is case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns an error wrapping
	// ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by its normalized email.
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdateProfile stores the profile attributes and UpdatedAt.
	UpdateProfile(ctx context.Context, account *Account) error

	// UpdateRole changes the role of an account.
	UpdateRole(ctx context.Context, id ulid.ULID, role Role, updatedAt time.Time) error

	// UpdatePassword replaces the stored verifier.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string, updatedAt time.Time) error
}
