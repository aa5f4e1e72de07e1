// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"net"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// AccountResponse wraps a single account.
type AccountResponse struct {
	Account *auth.PublicAccount `json:"account"`
}

// RegisterRequest is the registration body.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// LoginRequest is the login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the profile update body. Omitted fields are kept.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
}

// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.svc.Register(r.Context(), auth.RegisterRequest{
		Email:    body.Email,
		Password: body.Password,
		Profile: auth.Profile{
			DisplayName: body.DisplayName,
			FirstName:   body.FirstName,
			LastName:    body.LastName,
		},
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusCreated, AccountResponse{Account: &result.Account})
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.svc.Login(r.Context(), auth.LoginRequest{
		Email:     body.Email,
		Password:  body.Password,
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, AccountResponse{Account: &result.Account})
}

// POST /api/auth/logout
//
// Always clears the cookie, even when there was no session to delete.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	if err := s.svc.Logout(r.Context(), sessionToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account, err := s.svc.CurrentAccount(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Account: account})
}

// PATCH /api/auth/me
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var body UpdateProfileRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.svc.UpdateProfile(r.Context(), IdentityFrom(r.Context()), auth.ProfileUpdate{
		DisplayName: body.DisplayName,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Account: account})
}

// GET /api/admin/accounts/{id}
//
// A malformed ID is reported as not found; no account can have it.
func (s *Server) handleAdminGetAccount(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		s.writeError(w, r, oops.Code(auth.CodeAccountNotFound).With("account_id", raw).Wrap(auth.ErrNotFound))
		return
	}

	account, err := s.svc.GetAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Account: account})
}

// clientIP returns the host part of the peer address. Forwarded headers are
// not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
