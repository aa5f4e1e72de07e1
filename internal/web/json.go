// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object into dst. Malformed bodies are
// reported as validation failures on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "request body must be a JSON object"
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &tooLarge):
			msg = "request body is too large"
		}
		return badBody(msg, err)
	}
	if dec.More() {
		return badBody("request body must contain a single JSON object", nil)
	}
	return nil
}

func badBody(msg string, cause error) error {
	verr := &auth.ValidationError{Fields: map[string]string{"body": msg}}
	b := oops.Code(auth.CodeValidation).With("fields", verr.Fields)
	if cause != nil {
		b = b.With("cause", cause.Error())
	}
	return b.Wrap(verr)
}
