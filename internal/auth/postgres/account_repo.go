// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/store"
)

// emailConstraint is the unique constraint that decides concurrent registrations.
const emailConstraint = "accounts_email_key"

const accountColumns = `id, email, password_hash, display_name, first_name, last_name, role, created_at, updated_at`

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db store.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db store.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account in a single insert. The unique constraint on
// email is the authority for duplicate detection.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		account.Profile.DisplayName,
		account.Profile.FirstName,
		account.Profile.LastName,
		string(account.Role),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err, emailConstraint) {
			return oops.Code("ACCOUNT_CREATE_FAILED").
				With("email", account.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// UpdateProfile stores the profile attributes.
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *auth.Account) error {
	return r.updateOne(ctx, account.ID, "update profile", `
		UPDATE accounts
		SET display_name = $2, first_name = $3, last_name = $4, updated_at = $5
		WHERE id = $1
	`, account.Profile.DisplayName, account.Profile.FirstName, account.Profile.LastName, account.UpdatedAt)
}

// UpdateRole changes the role of an account.
func (r *AccountRepository) UpdateRole(ctx context.Context, id ulid.ULID, role auth.Role, updatedAt time.Time) error {
	return r.updateOne(ctx, id, "update role", `
		UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1
	`, string(role), updatedAt)
}

// UpdatePassword replaces the stored verifier.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string, updatedAt time.Time) error {
	return r.updateOne(ctx, id, "update password", `
		UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, passwordHash, updatedAt)
}

func (r *AccountRepository) updateOne(ctx context.Context, id ulid.ULID, operation, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, append([]any{id.String()}, args...)...)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", operation).
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		account auth.Account
		idStr   string
		role    string
	)
	err := row.Scan(
		&idStr,
		&account.Email,
		&account.PasswordHash,
		&account.Profile.DisplayName,
		&account.Profile.FirstName,
		&account.Profile.LastName,
		&role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("id", idStr).Wrap(err)
	}
	if account.Role, err = auth.ParseRole(role); err != nil {
		return nil, err
	}
	return &account, nil
}
