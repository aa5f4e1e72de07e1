// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/store"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db store.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db store.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session together with its identity snapshot.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	identity, err := json.Marshal(session.Identity)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").With("operation", "marshal identity").Wrap(err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO sessions (id, account_id, token_hash, identity, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		session.ID.String(),
		session.AccountID.String(),
		session.TokenHash,
		identity,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("account_id", session.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash. Expired sessions
// are returned; the caller decides expiry against its own clock.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, token_hash, identity, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	var (
		session  auth.Session
		idStr    string
		acctStr  string
		identity []byte
	)
	err := row.Scan(
		&idStr,
		&acctStr,
		&session.TokenHash,
		&identity,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").With("id", idStr).Wrap(err)
	}
	if session.AccountID, err = ulid.Parse(acctStr); err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").With("account_id", acctStr).Wrap(err)
	}
	if err := json.Unmarshal(identity, &session.Identity); err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "unmarshal identity").
			With("id", idStr).
			Wrap(err)
	}
	return &session, nil
}

// DeleteByTokenHash removes a session. Deleting an absent session is not an error.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session by token hash").
			Wrap(err)
	}
	return nil
}

// DeleteByAccount removes all sessions for an account.
func (r *SessionRepository) DeleteByAccount(ctx context.Context, accountID ulid.ULID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE account_id = $1`, accountID.String()); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete sessions by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// RefreshIdentity rewrites the identity snapshot on every session of the account.
func (r *SessionRepository) RefreshIdentity(ctx context.Context, identity auth.Identity) (int64, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return 0, oops.Code("SESSION_REFRESH_FAILED").With("operation", "marshal identity").Wrap(err)
	}

	tag, err := r.db.Exec(ctx, `UPDATE sessions SET identity = $2 WHERE account_id = $1`,
		identity.AccountID.String(), data)
	if err != nil {
		return 0, oops.Code("SESSION_REFRESH_FAILED").
			With("operation", "update session identity").
			With("account_id", identity.AccountID.String()).
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}
