// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/pkg/errutil"
)

// Operation names reported to Metrics.
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpResolve  = "resolve"
)

// OutcomeSuccess is the metrics outcome for a successful operation. Failures
// are reported as Classify(err).String().
const OutcomeSuccess = "success"

// Metrics records authentication outcomes.
type Metrics interface {
	RecordAttempt(operation, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordAttempt(string, string) {}

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for server-side error detail.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(clock Clock) Option {
	return func(s *Service) { s.now = clock }
}

// WithSessionTTL sets the lifetime of new sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithMetrics sets the outcome recorder.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service provides registration, login and session operations. It holds no
// mutable state between requests; every call reads the repositories.
type Service struct {
	accounts   AccountRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	logger     *slog.Logger
	now        Clock
	sessionTTL time.Duration
	metrics    Metrics

	// dummyHash is verified when an email is unknown so that the response
	// time matches a wrong-password attempt. It is computed once by hasher
	// from a random secret and never matches.
	dummyHash string
}

// NewAuthService creates a new Service.
func NewAuthService(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("accounts repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}

	s := &Service{
		accounts:   accounts,
		sessions:   sessions,
		hasher:     hasher,
		logger:     slog.Default(),
		now:        time.Now,
		sessionTTL: SessionTokenExpiry,
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger cannot be nil")
	}
	if s.now == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("clock cannot be nil")
	}
	if s.sessionTTL <= 0 {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("session_ttl", s.sessionTTL.String()).
			Errorf("session ttl must be positive")
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}

	secret, _, err := GenerateSessionToken()
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("operation", "generate dummy secret").Wrap(err)
	}
	if s.dummyHash, err = hasher.Hash(secret); err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("operation", "compute dummy verifier").Wrap(err)
	}
	return s, nil
}

// RegisterRequest contains registration input.
type RegisterRequest struct {
	Email     string
	Password  string
	Profile   Profile
	UserAgent string
	IPAddress string
}

// LoginRequest contains login input.
type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// AuthResult is returned by Register and Login. Token is the plaintext
// session token to hand to the client; it is not stored anywhere.
type AuthResult struct {
	Account PublicAccount
	Session *Session
	Token   string
}

// Register creates an account and establishes its first session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	result, err := s.register(ctx, req)
	s.observe(OpRegister, err)
	return result, err
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)

	// Fast path only; the unique index decides concurrent registrations.
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, duplicateIdentity(email)
	case !errors.Is(err, ErrNotFound):
		return nil, s.internal("registration lookup failed", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get account by email").
			Wrap(err))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.internal("registration hash failed", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err))
	}

	account, err := NewAccount(email, hash, req.Profile, s.now())
	if err != nil {
		return nil, s.internal("registration failed", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "build account").
			Wrap(err))
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.DebugContext(ctx, "concurrent registration rejected by store", "email", email)
			return nil, duplicateIdentity(email)
		}
		return nil, s.internal("registration insert failed", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err))
	}

	session, token, err := s.establish(ctx, account, req.UserAgent, req.IPAddress)
	if err != nil {
		// The account is stored; the client recovers by logging in.
		s.logger.WarnContext(ctx, "account registered without a session",
			"account_id", account.ID.String(),
			"email", email,
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	return &AuthResult{Account: account.Public(), Session: session, Token: token}, nil
}

// Login verifies credentials and establishes a new session. Unknown email
// and wrong password fail with the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	result, err := s.login(ctx, req)
	s.observe(OpLogin, err)
	return result, err
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validateLogin(req); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	targetHash := s.dummyHash
	accountExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, s.internal("login lookup failed", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr))
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	// Always verify, so unknown accounts cost the same as known ones.
	valid, verifyErr := s.hasher.Verify(req.Password, targetHash)
	if !accountExists {
		return nil, invalidCredentials()
	}
	if verifyErr != nil {
		return nil, s.internal("login verify failed", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("account_id", account.ID.String()).
			Wrap(verifyErr))
	}
	if !valid {
		return nil, invalidCredentials()
	}

	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		s.upgradeHash(ctx, account, req.Password)
	}

	session, token, err := s.establish(ctx, account, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account.Public(), Session: session, Token: token}, nil
}

// upgradeHash recomputes a legacy or weak verifier. Login succeeds
// regardless of the outcome.
func (s *Service) upgradeHash(ctx context.Context, account *Account, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		errutil.LogError(s.logger, "password rehash failed", err)
		return
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, newHash, s.now()); err != nil {
		errutil.LogError(s.logger, "password rehash store failed", err)
		return
	}
	account.PasswordHash = newHash
	s.logger.InfoContext(ctx, "password verifier upgraded", "account_id", account.ID.String())
}

// establish creates and persists a new session for the account.
func (s *Service) establish(ctx context.Context, account *Account, userAgent, ipAddress string) (*Session, string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", s.internal("session token failed", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err))
	}

	session, err := NewSession(account, tokenHash, userAgent, ipAddress, s.now(), s.sessionTTL)
	if err != nil {
		return nil, "", s.internal("session build failed", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "build session").
			Wrap(err))
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", s.internal("session insert failed", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("account_id", account.ID.String()).
			Wrap(err))
	}
	return session, token, nil
}

// Resolve maps a session token to the identity it authenticates. Missing,
// unknown and expired tokens all fail with ErrNotAuthenticated.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	identity, err := s.resolve(ctx, token)
	s.observe(OpResolve, err)
	return identity, err
}

func (s *Service) resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, notAuthenticated("missing token")
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notAuthenticated("unknown token")
		}
		return nil, s.internal("session lookup failed", oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err))
	}

	if session.IsExpiredAt(s.now()) {
		return nil, notAuthenticated("expired")
	}

	identity := session.Identity
	return &identity, nil
}

// Logout deletes the session for token. It is idempotent: an empty, unknown
// or already deleted token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.logout(ctx, token)
	s.observe(OpLogout, err)
	return err
}

func (s *Service) logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return s.internal("logout failed", oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err))
	}
	return nil
}

// CurrentAccount returns the public projection of the identity's account.
func (s *Service) CurrentAccount(ctx context.Context, identity *Identity) (*PublicAccount, error) {
	if identity == nil {
		return nil, notAuthenticated("missing identity")
	}
	account, err := s.accounts.GetByID(ctx, identity.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notAuthenticated("account missing")
		}
		return nil, s.internal("current account lookup failed", oops.Code("AUTH_ACCOUNT_LOOKUP_FAILED").
			With("account_id", identity.AccountID.String()).
			Wrap(err))
	}
	public := account.Public()
	return &public, nil
}

// GetAccount returns the public projection of any account by ID.
func (s *Service) GetAccount(ctx context.Context, id ulid.ULID) (*PublicAccount, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeAccountNotFound).With("account_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, s.internal("account lookup failed", oops.Code("AUTH_ACCOUNT_LOOKUP_FAILED").
			With("account_id", id.String()).
			Wrap(err))
	}
	public := account.Public()
	return &public, nil
}

// ProfileUpdate holds the profile fields to change. Nil fields are kept.
type ProfileUpdate struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
}

// UpdateProfile changes the owner's profile attributes and refreshes the
// identity snapshot of their sessions.
func (s *Service) UpdateProfile(ctx context.Context, identity *Identity, update ProfileUpdate) (*PublicAccount, error) {
	if identity == nil {
		return nil, notAuthenticated("missing identity")
	}

	account, err := s.accounts.GetByID(ctx, identity.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notAuthenticated("account missing")
		}
		return nil, s.internal("profile lookup failed", oops.Code("AUTH_PROFILE_UPDATE_FAILED").
			With("account_id", identity.AccountID.String()).
			Wrap(err))
	}

	profile := account.Profile
	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.FirstName != nil {
		profile.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		profile.LastName = *update.LastName
	}

	verr := &ValidationError{}
	validateProfile(verr, profile)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	displayChanged := profile.DisplayName != account.Profile.DisplayName
	account.Profile = profile
	account.UpdatedAt = s.now()

	if err := s.accounts.UpdateProfile(ctx, account); err != nil {
		return nil, s.internal("profile update failed", oops.Code("AUTH_PROFILE_UPDATE_FAILED").
			With("account_id", account.ID.String()).
			Wrap(err))
	}

	if displayChanged {
		if _, err := s.sessions.RefreshIdentity(ctx, account.Identity()); err != nil {
			// Display name is cosmetic; stale snapshots are acceptable.
			errutil.LogError(s.logger, "session identity refresh failed", err)
		}
	}

	public := account.Public()
	return &public, nil
}

// SetRole changes an account's role. This is an administrative operation
// invoked out of band, never from a customer request. Granting admin
// refreshes the identity of existing sessions. Revoking it deletes every
// session of the account, so the account must log in again.
//
// A login that read the account before the role change and stores its
// session after SetRole returns keeps the old role in its snapshot.
func (s *Service) SetRole(ctx context.Context, email string, role Role) (*PublicAccount, error) {
	if !role.Valid() {
		return nil, oops.Code("AUTH_UNKNOWN_ROLE").With("role", string(role)).Errorf("unknown role %q", role)
	}

	email = NormalizeEmail(email)
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeAccountNotFound).With("email", email).Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_SET_ROLE_FAILED").With("operation", "get account by email").Wrap(err)
	}

	revoking := account.IsAdmin() && role != RoleAdmin
	if account.Role != role {
		now := s.now()
		if err := s.accounts.UpdateRole(ctx, account.ID, role, now); err != nil {
			return nil, oops.Code("AUTH_SET_ROLE_FAILED").
				With("operation", "update role").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
		account.Role = role
		account.UpdatedAt = now
	}

	if revoking {
		if err := s.sessions.DeleteByAccount(ctx, account.ID); err != nil {
			return nil, oops.Code("AUTH_SET_ROLE_FAILED").
				With("operation", "delete sessions").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
		s.logger.InfoContext(ctx, "account role changed, sessions revoked",
			"account_id", account.ID.String(),
			"role", string(role),
		)
		public := account.Public()
		return &public, nil
	}

	refreshed, err := s.sessions.RefreshIdentity(ctx, account.Identity())
	if err != nil {
		return nil, oops.Code("AUTH_SET_ROLE_FAILED").
			With("operation", "refresh session identities").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account role changed",
		"account_id", account.ID.String(),
		"role", string(role),
		"sessions_refreshed", refreshed,
	)
	public := account.Public()
	return &public, nil
}

// SweepExpired deletes expired sessions. Expiry is enforced at resolve time
// regardless; sweeping only reclaims storage.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, oops.Code("AUTH_SWEEP_FAILED").With("operation", "delete expired sessions").Wrap(err)
	}
	return n, nil
}

// RequireAdmin rejects identities without the admin role. A nil identity
// means the request never authenticated.
func RequireAdmin(identity *Identity) error {
	if identity == nil {
		return notAuthenticated("missing identity")
	}
	if !identity.IsAdmin() {
		return oops.Code(CodeInsufficientPrivilege).
			With("account_id", identity.AccountID.String()).
			Wrap(ErrInsufficientPrivilege)
	}
	return nil
}

func duplicateIdentity(email string) error {
	return oops.Code(CodeDuplicateIdentity).With("email", email).Wrap(ErrDuplicateEmail)
}

// internal logs full detail server side and returns err unchanged.
func (s *Service) internal(msg string, err error) error {
	errutil.LogError(s.logger, msg, err)
	return err
}

func (s *Service) observe(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = Classify(err).String()
	}
	s.metrics.RecordAttempt(operation, outcome)
}
