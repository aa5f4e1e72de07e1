// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/access"
	"github.com/wolvespetstore/petstore/internal/auth"
)

// AuthService is the part of auth.Service the HTTP layer calls.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResult, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
	CurrentAccount(ctx context.Context, identity *auth.Identity) (*auth.PublicAccount, error)
	GetAccount(ctx context.Context, id ulid.ULID) (*auth.PublicAccount, error)
	UpdateProfile(ctx context.Context, identity *auth.Identity, update auth.ProfileUpdate) (*auth.PublicAccount, error)
}

var _ AuthService = (*auth.Service)(nil)

// RequestRecorder counts completed HTTP requests.
type RequestRecorder interface {
	RecordRequest(method, route string, status int)
}

type noopRecorder struct{}

func (noopRecorder) RecordRequest(string, string, int) {}

// Gate restricts who may reach a route.
type Gate struct {
	kind       gateKind
	capability string
}

type gateKind int

const (
	gatePublic gateKind = iota
	gateSession
	gateAdmin
	gateCapability
)

// Predefined gates.
var (
	Public  = Gate{kind: gatePublic}
	Session = Gate{kind: gateSession}
	Admin   = Gate{kind: gateAdmin}
)

// Capability gates a route on a capability of the caller's role.
func Capability(capability string) Gate {
	return Gate{kind: gateCapability, capability: capability}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithAccessControl sets the capability checker used by Capability gates.
func WithAccessControl(ac access.AccessControl) Option {
	return func(s *Server) { s.access = ac }
}

// WithRequestRecorder sets the HTTP request counter.
func WithRequestRecorder(rec RequestRecorder) Option {
	return func(s *Server) { s.metrics = rec }
}

// WithCookieSecure controls the Secure attribute of the session cookie.
// Disable it only for plain-HTTP local development.
func WithCookieSecure(secure bool) Option {
	return func(s *Server) { s.cookieSecure = secure }
}

// WithReadHeaderTimeout bounds how long a client may take to send headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) { s.readHeaderTimeout = d }
}

// Server is the public API server.
type Server struct {
	svc               AuthService
	access            access.AccessControl
	logger            *slog.Logger
	metrics           RequestRecorder
	cookieSecure      bool
	readHeaderTimeout time.Duration

	mux        *http.ServeMux
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server with the account routes registered.
func NewServer(svc AuthService, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth service is required")
	}

	s := &Server{
		svc:               svc,
		logger:            slog.Default(),
		metrics:           noopRecorder{},
		cookieSecure:      true,
		readHeaderTimeout: 10 * time.Second,
		mux:               http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("logger cannot be nil")
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	if s.access == nil {
		s.access = access.NewStaticAccessControl()
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Handle("POST /api/auth/register", Public, http.HandlerFunc(s.handleRegister))
	s.Handle("POST /api/auth/login", Public, http.HandlerFunc(s.handleLogin))
	s.Handle("POST /api/auth/logout", Public, http.HandlerFunc(s.handleLogout))
	s.Handle("GET /api/auth/me", Session, http.HandlerFunc(s.handleMe))
	s.Handle("PATCH /api/auth/me", Session, http.HandlerFunc(s.handleUpdateMe))
	s.Handle("GET /api/admin/accounts/{id}", Admin, http.HandlerFunc(s.handleAdminGetAccount))
}

// Handle registers handler for pattern behind gate. Patterns use the
// net/http ServeMux syntax, e.g. "POST /api/inquiries".
func (s *Server) Handle(pattern string, gate Gate, handler http.Handler) {
	var h http.Handler
	switch gate.kind {
	case gateSession:
		h = s.RequireSession(handler)
	case gateAdmin:
		h = s.RequireAdmin(handler)
	case gateCapability:
		h = s.RequireCapability(gate.capability)(handler)
	default:
		h = handler
	}

	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := routeInfoFrom(r.Context()); info != nil {
			info.pattern = pattern
		}
		h.ServeHTTP(w, r)
	}))
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.observe(s.recoverPanics(s.mux))
}

// Start listens on addr and serves in the background. Errors from the HTTP
// server after Start returns are sent on the returned channel, which is
// closed when the server stops.
func (s *Server) Start(addr string) (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("WEB_ALREADY_RUNNING").Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
		}
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the bound address, or "" if not started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
