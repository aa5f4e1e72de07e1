// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes  = 32             // 32 bytes = 64 hex chars
	SessionTokenExpiry = 24 * time.Hour // default session lifetime
)

// Identity is the authenticated principal resolved from a session. It is
// stored with the session so resolution needs no account lookup.
type Identity struct {
	AccountID   ulid.ULID `json:"account_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
}

// IsAdmin reports whether the identity carries the elevated privilege.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Session is a server-side login session. Only the hash of the token is
// persisted; the plaintext token lives in the client's cookie.
type Session struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	TokenHash string
	Identity  Identity
	UserAgent string
	IPAddress string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a validated Session for the account.
func NewSession(account *Account, tokenHash, userAgent, ipAddress string, now time.Time, ttl time.Duration) (*Session, error) {
	if account == nil || account.ID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if ttl <= 0 {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").With("ttl", ttl.String()).Errorf("session ttl must be positive")
	}

	return &Session{
		ID:        ulid.Make(),
		AccountID: account.ID,
		TokenHash: tokenHash,
		Identity:  account.Identity(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// IsExpiredAt reports whether the session is expired at t. The expiry
// instant itself counts as expired.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the SHA256 hash of a session token.
// Lookups go by hash, so a leaked sessions table yields no usable tokens.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session in a single write.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// DeleteByTokenHash removes a session. Deleting an absent session is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByAccount removes all sessions for an account.
	DeleteByAccount(ctx context.Context, accountID ulid.ULID) error

	// RefreshIdentity rewrites the identity snapshot of every session
	// belonging to the account.
	RefreshIdentity(ctx context.Context, identity Identity) (int64, error)

	// DeleteExpired removes sessions expired at now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
