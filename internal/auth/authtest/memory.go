// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package authtest provides in-memory auth repositories and a controllable
// clock for tests that need real repository semantics without a database.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// Compile-time interface checks.
var (
	_ auth.AccountRepository = (*AccountStore)(nil)
	_ auth.SessionRepository = (*SessionStore)(nil)
)

// AccountStore is an in-memory AccountRepository. Email uniqueness is
// enforced under the store's lock, like the unique index in postgres.
type AccountStore struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]auth.Account
	byEmail map[string]ulid.ULID
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[ulid.ULID]auth.Account),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create implements auth.AccountRepository.
func (s *AccountStore) Create(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[account.Email]; taken {
		return oops.Code("ACCOUNT_CREATE_FAILED").With("email", account.Email).Wrap(auth.ErrDuplicateEmail)
	}
	s.byID[account.ID] = *account
	s.byEmail[account.Email] = account.ID
	return nil
}

// GetByID implements auth.AccountRepository.
func (s *AccountStore) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return &a, nil
}

// GetByEmail implements auth.AccountRepository.
func (s *AccountStore) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("email", email).Wrap(auth.ErrNotFound)
	}
	a := s.byID[id]
	return &a, nil
}

// UpdateProfile implements auth.AccountRepository.
func (s *AccountStore) UpdateProfile(_ context.Context, account *auth.Account) error {
	return s.update(account.ID, func(a *auth.Account) {
		a.Profile = account.Profile
		a.UpdatedAt = account.UpdatedAt
	})
}

// UpdateRole implements auth.AccountRepository.
func (s *AccountStore) UpdateRole(_ context.Context, id ulid.ULID, role auth.Role, updatedAt time.Time) error {
	return s.update(id, func(a *auth.Account) {
		a.Role = role
		a.UpdatedAt = updatedAt
	})
}

// UpdatePassword implements auth.AccountRepository.
func (s *AccountStore) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string, updatedAt time.Time) error {
	return s.update(id, func(a *auth.Account) {
		a.PasswordHash = passwordHash
		a.UpdatedAt = updatedAt
	})
}

// Len returns the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *AccountStore) update(id ulid.ULID, fn func(*auth.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	fn(&a)
	s.byID[id] = a
	return nil
}

// SessionStore is an in-memory SessionRepository keyed by token hash.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]auth.Session)}
}

// Create implements auth.SessionRepository.
func (s *SessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.TokenHash]; exists {
		return oops.Code("SESSION_CREATE_FAILED").Errorf("token hash collision")
	}
	s.sessions[session.TokenHash] = *session
	return nil
}

// GetByTokenHash implements auth.SessionRepository.
func (s *SessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[tokenHash]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return &sess, nil
}

// DeleteByTokenHash implements auth.SessionRepository.
func (s *SessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

// DeleteByAccount implements auth.SessionRepository.
func (s *SessionStore) DeleteByAccount(_ context.Context, accountID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, sess := range s.sessions {
		if sess.AccountID == accountID {
			delete(s.sessions, hash)
		}
	}
	return nil
}

// RefreshIdentity implements auth.SessionRepository.
func (s *SessionStore) RefreshIdentity(_ context.Context, identity auth.Identity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, sess := range s.sessions {
		if sess.AccountID == identity.AccountID {
			sess.Identity = identity
			s.sessions[hash] = sess
			n++
		}
	}
	return n, nil
}

// DeleteExpired implements auth.SessionRepository.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, sess := range s.sessions {
		if sess.IsExpiredAt(now) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
