// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/pkg/errutil"
)

var sessionCols = []string{"id", "account_id", "token_hash", "identity", "user_agent", "ip_address", "expires_at", "created_at"}

func testSession(t *testing.T) *auth.Session {
	t.Helper()
	account := testAccount(t)
	session, err := auth.NewSession(account, "tokenhash", "Mozilla/5.0", "10.0.0.1", account.CreatedAt, time.Hour)
	require.NoError(t, err)
	return session
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	session := testSession(t)
	identity, err := json.Marshal(session.Identity)
	require.NoError(t, err)

	t.Run("inserts session with identity snapshot", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID.String(), session.AccountID.String(), "tokenhash", identity,
				"Mozilla/5.0", "10.0.0.1", session.ExpiresAt, session.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewSessionRepository(mock).Create(ctx, session))
	})

	t.Run("exec error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("foreign key violation"))

		err := NewSessionRepository(mock).Create(ctx, session)
		errutil.AssertErrorCode(t, err, "SESSION_CREATE_FAILED")
	})
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	session := testSession(t)
	identity, err := json.Marshal(session.Identity)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM sessions`).
			WithArgs("tokenhash").
			WillReturnRows(pgxmock.NewRows(sessionCols).AddRow(
				session.ID.String(), session.AccountID.String(), "tokenhash", identity,
				"Mozilla/5.0", "10.0.0.1", session.ExpiresAt, session.CreatedAt,
			))

		got, err := NewSessionRepository(mock).GetByTokenHash(ctx, "tokenhash")
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.AccountID, got.AccountID)
		assert.Equal(t, session.Identity, got.Identity)
		assert.Equal(t, session.ExpiresAt, got.ExpiresAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM sessions`).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(sessionCols))

		_, err := NewSessionRepository(mock).GetByTokenHash(ctx, "missing")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("corrupt identity", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM sessions`).
			WithArgs("tokenhash").
			WillReturnRows(pgxmock.NewRows(sessionCols).AddRow(
				session.ID.String(), session.AccountID.String(), "tokenhash", []byte("{not json"),
				"", "", session.ExpiresAt, session.CreatedAt,
			))

		_, err := NewSessionRepository(mock).GetByTokenHash(ctx, "tokenhash")
		errutil.AssertErrorCode(t, err, "SESSION_SCAN_FAILED")
	})
}

func TestSessionRepository_Deletes(t *testing.T) {
	ctx := context.Background()

	t.Run("delete by token hash tolerates absent rows", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("gone").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, NewSessionRepository(mock).DeleteByTokenHash(ctx, "gone"))
	})

	t.Run("delete by account", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM sessions WHERE account_id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		require.NoError(t, NewSessionRepository(mock).DeleteByAccount(ctx, id))
	})

	t.Run("delete expired returns count", func(t *testing.T) {
		mock := newMockPool(t)
		now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).
			WithArgs(now).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))

		n, err := NewSessionRepository(mock).DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("delete error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("tok").
			WillReturnError(errors.New("boom"))

		err := NewSessionRepository(mock).DeleteByTokenHash(ctx, "tok")
		errutil.AssertErrorCode(t, err, "SESSION_DELETE_FAILED")
	})
}

func TestSessionRepository_RefreshIdentity(t *testing.T) {
	ctx := context.Background()
	identity := auth.Identity{AccountID: ulid.Make(), Email: "carol@example.com", Role: auth.RoleAdmin}
	data, err := json.Marshal(identity)
	require.NoError(t, err)

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE sessions SET identity = \$2 WHERE account_id = \$1`).
		WithArgs(identity.AccountID.String(), data).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := NewSessionRepository(mock).RefreshIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
