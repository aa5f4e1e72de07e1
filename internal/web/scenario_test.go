// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/internal/web"
)

func errorCode(rec *httptest.ResponseRecorder) string {
	var body web.ErrorBody
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

func accountOf(rec *httptest.ResponseRecorder) auth.PublicAccount {
	var body struct {
		Account auth.PublicAccount `json:"account"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Account
}

var _ = Describe("Alice adopts an account", Ordered, func() {
	var (
		st          *stack
		aliceCookie *http.Cookie
		aliceID     string
		loginCookie *http.Cookie
	)

	BeforeAll(func() {
		var err error
		st, err = newStack()
		Expect(err).NotTo(HaveOccurred())
	})

	It("registers alice and signs her in", func() {
		rec := st.do(http.MethodPost, "/api/auth/register",
			`{"email":"alice@example.com","password":"kittens&puppies","display_name":"Alice"}`)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		account := accountOf(rec)
		Expect(account.Email).To(Equal("alice@example.com"))
		Expect(account.IsAdmin).To(BeFalse())
		aliceID = account.ID

		aliceCookie = sessionCookie(rec)
		Expect(aliceCookie).NotTo(BeNil())
		Expect(aliceCookie.HttpOnly).To(BeTrue())
	})

	It("rejects a second registration of the same email", func() {
		rec := st.do(http.MethodPost, "/api/auth/register",
			`{"email":"Alice@Example.com","password":"another-pass!"}`)

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(rec)).To(Equal("DUPLICATE_IDENTITY"))
	})

	It("rejects a weak password for a new email", func() {
		rec := st.do(http.MethodPost, "/api/auth/register",
			`{"email":"bob@example.com","password":"password"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("VALIDATION_ERROR"))
	})

	It("logs alice in with her password only", func() {
		bad := st.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"kittens&puppie"}`)
		Expect(bad.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(bad)).To(Equal("INVALID_CREDENTIALS"))

		rec := st.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"kittens&puppies"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		loginCookie = sessionCookie(rec)
		Expect(loginCookie).NotTo(BeNil())
		Expect(loginCookie.Value).NotTo(Equal(aliceCookie.Value))
	})

	It("resolves both of alice's sessions", func() {
		for _, c := range []*http.Cookie{aliceCookie, loginCookie} {
			rec := st.do(http.MethodGet, "/api/auth/me", "", c)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(accountOf(rec).ID).To(Equal(aliceID))
		}
	})

	It("keeps alice out of the admin area", func() {
		rec := st.do(http.MethodGet, "/api/admin/accounts/"+aliceID, "", loginCookie)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal("INSUFFICIENT_PRIVILEGE"))
	})

	It("lets alice into the admin area once she is granted admin", func() {
		_, err := st.svc.SetRole(context.Background(), "alice@example.com", auth.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())

		rec := st.do(http.MethodGet, "/api/admin/accounts/"+aliceID, "", loginCookie)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(accountOf(rec).IsAdmin).To(BeTrue())
	})

	It("ends only the session she logs out of", func() {
		rec := st.do(http.MethodPost, "/api/auth/logout", "", loginCookie)
		Expect(rec.Code).To(Equal(http.StatusOK))

		Expect(st.do(http.MethodGet, "/api/auth/me", "", loginCookie).Code).To(Equal(http.StatusUnauthorized))
		Expect(st.do(http.MethodGet, "/api/auth/me", "", aliceCookie).Code).To(Equal(http.StatusOK))

		Expect(st.do(http.MethodPost, "/api/auth/logout", "", loginCookie).Code).To(Equal(http.StatusOK))
	})

	It("expires her remaining session after its lifetime", func() {
		st.clock.Advance(auth.SessionTokenExpiry)

		rec := st.do(http.MethodGet, "/api/auth/me", "", aliceCookie)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal("NOT_AUTHENTICATED"))

		swept, err := st.svc.SweepExpired(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(swept).To(BeEquivalentTo(1))
		Expect(st.sessions.Len()).To(BeZero())
	})

	It("can sign in again after expiry", func() {
		st.clock.Advance(time.Minute)

		rec := st.do(http.MethodPost, "/api/auth/login", `{"email":"ALICE@example.com","password":"kittens&puppies"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(st.do(http.MethodGet, "/api/auth/me", "", sessionCookie(rec)).Code).To(Equal(http.StatusOK))
	})
})
