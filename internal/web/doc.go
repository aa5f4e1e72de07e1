// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package web serves the account API over HTTP.
//
// Routes are registered on a Server with a Gate that decides who may reach
// them:
//   - Public: anyone
//   - Session: a request carrying a live session cookie
//   - Admin: a live session whose identity holds the admin role
//   - Capability(c): a live session whose role grants capability c
//
// Gated handlers read the authenticated principal with IdentityFrom. Every
// failure is written as {"error":{"code":...,"message":...}}; bad credentials
// and missing sessions share one message so responses do not reveal which
// part of a login was wrong.
package web
