// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Password policy. Changing either constant is a product decision.
const (
	MinPasswordLength = 8
	SpecialCharacters = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~`"
)

// Field limits.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxNameLength     = 100
)

// MeetsPolicy reports whether a password is at least MinPasswordLength
// characters long and contains one of SpecialCharacters.
func MeetsPolicy(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	return strings.ContainsAny(password, SpecialCharacters)
}

// ValidateEmail checks the shape of an email address. Display-name forms
// such as "Alice <alice@example.com>" are rejected.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "email is required"
	case len(email) > MaxEmailLength:
		return "email is too long"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "email is not a valid address"
	}
	return ""
}

// validateRegistration checks every registration field before any store
// access happens.
func validateRegistration(req RegisterRequest) error {
	verr := &ValidationError{}
	if msg := ValidateEmail(req.Email); msg != "" {
		verr.add("email", msg)
	}
	switch {
	case req.Password == "":
		verr.add("password", "password is required")
	case len(req.Password) > MaxPasswordLength:
		verr.add("password", "password is too long")
	case !MeetsPolicy(req.Password):
		verr.add("password", "password must be at least 8 characters and contain a special character")
	}
	validateProfile(verr, req.Profile)
	return verr.errOrNil()
}

// validateLogin only checks presence; shape errors would leak which part of
// the credentials is wrong.
func validateLogin(req LoginRequest) error {
	verr := &ValidationError{}
	if strings.TrimSpace(req.Email) == "" {
		verr.add("email", "email is required")
	}
	if req.Password == "" {
		verr.add("password", "password is required")
	}
	return verr.errOrNil()
}

func validateProfile(verr *ValidationError, p Profile) {
	for field, value := range map[string]string{
		"display_name": p.DisplayName,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
	} {
		if utf8.RuneCountInString(value) > MaxNameLength {
			verr.add(field, "must be at most 100 characters")
		}
	}
}
