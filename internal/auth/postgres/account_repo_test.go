// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/pkg/errutil"
)

var accountCols = []string{"id", "email", "password_hash", "display_name", "first_name", "last_name", "role", "created_at", "updated_at"}

func testAccount(t *testing.T) *auth.Account {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account, err := auth.NewAccount("alice@example.com", "$argon2id$hash", auth.Profile{DisplayName: "Alice", FirstName: "Alice", LastName: "Liddell"}, now)
	require.NoError(t, err)
	return account
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	account := testAccount(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantCode  string
	}{
		{
			name: "inserts account",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(account.ID.String(), "alice@example.com", "$argon2id$hash", "Alice", "Alice", "Liddell", "customer", account.CreatedAt, account.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_email_key"})
			},
			wantErr:  auth.ErrDuplicateEmail,
			wantCode: "ACCOUNT_CREATE_FAILED",
		},
		{
			name: "other unique violation is not a duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_pkey"})
			},
			wantCode: "ACCOUNT_CREATE_FAILED",
		},
		{
			name: "connection error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "ACCOUNT_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setupMock(mock)

			err := NewAccountRepository(mock).Create(ctx, account)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, auth.ErrDuplicateEmail)
			}
		})
	}
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	account := testAccount(t)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows(accountCols).AddRow(
				account.ID.String(), account.Email, account.PasswordHash,
				"Alice", "Alice", "Liddell", "admin", account.CreatedAt, account.UpdatedAt,
			))

		got, err := NewAccountRepository(mock).GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
		assert.Equal(t, auth.RoleAdmin, got.Role)
		assert.Equal(t, "Liddell", got.Profile.LastName)
		assert.Equal(t, account.PasswordHash, got.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnRows(pgxmock.NewRows(accountCols))

		_, err := NewAccountRepository(mock).GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("unknown stored role", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows(accountCols).AddRow(
				account.ID.String(), account.Email, account.PasswordHash,
				"", "", "", "staff", account.CreatedAt, account.UpdatedAt,
			))

		_, err := NewAccountRepository(mock).GetByEmail(ctx, "alice@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_ROLE")
	})

	t.Run("query error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnError(errors.New("timeout"))

		_, err := NewAccountRepository(mock).GetByEmail(ctx, "alice@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ACCOUNT_GET_FAILED")
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	account := testAccount(t)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
			WithArgs(account.ID.String()).
			WillReturnRows(pgxmock.NewRows(accountCols).AddRow(
				account.ID.String(), account.Email, account.PasswordHash,
				"Alice", "", "", "customer", account.CreatedAt, account.UpdatedAt,
			))

		got, err := NewAccountRepository(mock).GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.Email, got.Email)
	})

	t.Run("corrupt id", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
			WithArgs(account.ID.String()).
			WillReturnRows(pgxmock.NewRows(accountCols).AddRow(
				"not-a-ulid", account.Email, account.PasswordHash,
				"", "", "", "customer", account.CreatedAt, account.UpdatedAt,
			))

		_, err := NewAccountRepository(mock).GetByID(ctx, account.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_Updates(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("role", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE accounts SET role = \$2`).
			WithArgs(id.String(), "admin", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewAccountRepository(mock).UpdateRole(ctx, id, auth.RoleAdmin, now))
	})

	t.Run("password", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE accounts SET password_hash = \$2`).
			WithArgs(id.String(), "$argon2id$new", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewAccountRepository(mock).UpdatePassword(ctx, id, "$argon2id$new", now))
	})

	t.Run("profile", func(t *testing.T) {
		mock := newMockPool(t)
		account := &auth.Account{ID: id, Profile: auth.Profile{DisplayName: "Ally", FirstName: "A", LastName: "L"}, UpdatedAt: now}
		mock.ExpectExec(`UPDATE accounts`).
			WithArgs(id.String(), "Ally", "A", "L", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewAccountRepository(mock).UpdateProfile(ctx, account))
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE accounts SET role = \$2`).
			WithArgs(id.String(), "admin", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewAccountRepository(mock).UpdateRole(ctx, id, auth.RoleAdmin, now)
		require.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE accounts SET password_hash = \$2`).
			WithArgs(id.String(), "$argon2id$new", now).
			WillReturnError(errors.New("deadlock"))

		err := NewAccountRepository(mock).UpdatePassword(ctx, id, "$argon2id$new", now)
		errutil.AssertErrorCode(t, err, "ACCOUNT_UPDATE_FAILED")
		errutil.AssertErrorContext(t, err, "operation", "update password")
	})
}
