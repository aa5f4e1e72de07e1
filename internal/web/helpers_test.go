// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/auth/authtest"
	"github.com/wolvespetstore/petstore/internal/web"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const strongPassword = "correct-horse!"

type recordedRequest struct {
	method string
	route  string
	status int
}

type requestRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *requestRecorder) RecordRequest(method, route string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{method: method, route: route, status: status})
}

func (r *requestRecorder) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return recordedRequest{}
	}
	return r.requests[len(r.requests)-1]
}

// stack is a web server over the real auth service and in-memory stores.
type stack struct {
	accounts *authtest.AccountStore
	sessions *authtest.SessionStore
	clock    *authtest.Clock
	svc      *auth.Service
	server   *web.Server
	handler  http.Handler
	requests *requestRecorder
	logs     *bytes.Buffer
	logger   *slog.Logger
}

func newStack(opts ...web.Option) (*stack, error) {
	st := &stack{
		accounts: authtest.NewAccountStore(),
		sessions: authtest.NewSessionStore(),
		clock:    authtest.NewClock(fixedNow),
		requests: &requestRecorder{},
		logs:     &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(st.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st.logger = logger

	svc, err := auth.NewAuthService(st.accounts, st.sessions, authtest.NewFastHasher(),
		auth.WithClock(st.clock.Now),
		auth.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	st.svc = svc

	all := append([]web.Option{
		web.WithLogger(logger),
		web.WithRequestRecorder(st.requests),
	}, opts...)
	server, err := web.NewServer(svc, all...)
	if err != nil {
		return nil, err
	}
	st.server = server
	st.handler = server.Handler()
	return st, nil
}

func mustStack(t *testing.T, opts ...web.Option) *stack {
	t.Helper()
	st, err := newStack(opts...)
	require.NoError(t, err)
	return st
}

// do sends a request through the full middleware chain.
func (st *stack) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:52100"
	req.Header.Set("User-Agent", "petstore-test/1.0")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	st.handler.ServeHTTP(rec, req)
	return rec
}

// doWith sends a bodiless request through h.
func (st *stack) doWith(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func registerBody(email string) string {
	return `{"email":"` + email + `","password":"` + strongPassword + `","display_name":"Alice"}`
}

func loginBody(email, password string) string {
	return `{"email":"` + email + `","password":"` + password + `"}`
}

// sessionCookie returns the session cookie set by rec, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == web.SessionCookieName {
			return c
		}
	}
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) web.ErrorDetail {
	t.Helper()
	var body web.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Error
}

func decodeAccount(t *testing.T, rec *httptest.ResponseRecorder) auth.PublicAccount {
	t.Helper()
	var body struct {
		Account auth.PublicAccount `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Account
}
