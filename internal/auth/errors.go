// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// Sentinel errors. Repositories wrap these so callers can use errors.Is
// regardless of the oops context layered on top.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned by AccountRepository.Create when the
	// storage layer's unique constraint on email rejects the insert.
	ErrDuplicateEmail = errors.New("email already registered")

	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
)

// Error codes attached to service-level failures.
const (
	CodeValidation            = "AUTH_VALIDATION"
	CodeDuplicateIdentity     = "AUTH_DUPLICATE_IDENTITY"
	CodeInvalidCredentials    = "AUTH_INVALID_CREDENTIALS"
	CodeNotAuthenticated      = "AUTH_NOT_AUTHENTICATED"
	CodeInsufficientPrivilege = "AUTH_INSUFFICIENT_PRIVILEGE"
	CodeAccountNotFound       = "AUTH_ACCOUNT_NOT_FOUND"
)

// Kind is the caller-facing classification of an auth failure.
type Kind int

// Failure kinds. KindInternal covers every store or infrastructure error.
const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindInvalidCredentials
	KindNotAuthenticated
	KindInsufficientPrivilege
	KindNotFound
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindDuplicate:
		return "DUPLICATE_IDENTITY"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindNotAuthenticated:
		return "NOT_AUTHENTICATED"
	case KindInsufficientPrivilege:
		return "INSUFFICIENT_PRIVILEGE"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// Classify maps an error returned by this package to its Kind.
// A nil error classifies as KindInternal; callers check for nil first.
func Classify(err error) Kind {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrDuplicateEmail):
		return KindDuplicate
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, ErrInsufficientPrivilege):
		return KindInsufficientPrivilege
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// ValidationError reports caller-fixable input problems, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// Error lists the offending fields in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records a field message, keeping the first message per field.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// errOrNil returns the ValidationError wrapped with its code, or nil when
// no field failed.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return oops.Code(CodeValidation).With("fields", e.Fields).Wrap(e)
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
}

func notAuthenticated(reason string) error {
	return oops.Code(CodeNotAuthenticated).With("reason", reason).Wrap(ErrNotAuthenticated)
}
