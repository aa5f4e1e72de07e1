// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

// Package auth provides authentication primitives for the pet store.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewAccount - creates a customer Account with a normalized email and precomputed hash
//   - NewSession - creates a Session with a token hash, identity snapshot and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
//
// # Credentials
//
// Passwords are stored as argon2id verifiers (Argon2idHasher). Legacy bcrypt
// verifiers still verify and are rehashed on the next successful login.
// MeetsPolicy is the only password rule.
//
// # Sessions
//
// A session token is 32 random bytes, hex-encoded, handed to the client once.
// Only its SHA-256 hash is stored. Service.Resolve re-reads the session on every
// call and rejects it at or after its expiry instant. Sweeper deletes expired
// rows in the background.
//
// # Errors
//
// Every failure can be mapped with Classify to a Kind. ErrInvalidCredentials is
// returned for both unknown email and wrong password.
package auth
