// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/logging"
)

// RequestIDHeader carries the per-request ULID back to the client.
const RequestIDHeader = "X-Request-ID"

// RequireSession resolves the session cookie and attaches the identity to
// the request context. Requests without a live session get 401.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.svc.Resolve(r.Context(), sessionToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// RequireAdmin composes RequireSession with the admin role check.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(IdentityFrom(r.Context())); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireCapability composes RequireSession with a capability check against
// the identity's role.
func (s *Server) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return s.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFrom(r.Context())
			if !s.access.Check(r.Context(), identity, capability) {
				s.writeError(w, r, oops.Code(auth.CodeInsufficientPrivilege).
					With("capability", capability).
					With("account_id", identity.AccountID.String()).
					Wrap(auth.ErrInsufficientPrivilege))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	//nolint:wrapcheck // ResponseWriter contract
	return n, err
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// observe assigns a request ID, then logs and counts the request once the
// handler returns.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := ulid.Make().String()
		info := &routeInfo{}

		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = withRouteInfo(ctx, info)
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		route := info.pattern
		if route == "" {
			route = "unmatched"
		}

		s.metrics.RecordRequest(r.Method, route, status)
		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoverPanics turns a handler panic into a 500 response.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.ErrorContext(r.Context(), "handler panic",
					"panic", p,
					"stack", string(debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
					Code:    auth.KindInternal.String(),
					Message: msgInternal,
				}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
