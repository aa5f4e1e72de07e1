// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/wolvespetstore/petstore/internal/auth"
	"github.com/wolvespetstore/petstore/pkg/errutil"
)

// Messages shown to clients. Credential and session failures share one.
const (
	msgAuthenticationFailed  = "authentication failed"
	msgValidationFailed      = "validation failed"
	msgDuplicateIdentity     = "an account with this email already exists"
	msgInsufficientPrivilege = "insufficient privilege"
	msgNotFound              = "not found"
	msgInternal              = "internal error"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor maps an auth failure kind to its HTTP status and client message.
func statusFor(kind auth.Kind) (int, string) {
	switch kind {
	case auth.KindValidation:
		return http.StatusBadRequest, msgValidationFailed
	case auth.KindDuplicate:
		return http.StatusConflict, msgDuplicateIdentity
	case auth.KindInvalidCredentials, auth.KindNotAuthenticated:
		return http.StatusUnauthorized, msgAuthenticationFailed
	case auth.KindInsufficientPrivilege:
		return http.StatusForbidden, msgInsufficientPrivilege
	case auth.KindNotFound:
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError classifies err and writes the matching response. Internal
// failures are logged with full detail; the client only sees the kind.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := auth.Classify(err)
	status, msg := statusFor(kind)

	body := ErrorBody{Error: ErrorDetail{Code: kind.String(), Message: msg}}

	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		body.Error.Fields = verr.Fields
	}

	if kind == auth.KindInternal {
		errutil.LogErrorContext(r.Context(), s.logger, "request failed", err)
	}

	writeJSON(w, status, body)
}
