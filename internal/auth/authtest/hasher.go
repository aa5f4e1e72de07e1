// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package authtest

import "github.com/wolvespetstore/petstore/internal/auth"

// FastHashParams are the cheapest argon2id parameters the hasher accepts.
// Tests use them so registration and login stay fast.
var FastHashParams = auth.HashParams{
	Time:    1,
	Memory:  1024,
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
}

// NewFastHasher returns an argon2id hasher using FastHashParams.
func NewFastHasher() *auth.Argon2idHasher {
	h, err := auth.NewArgon2idHasherWithParams(FastHashParams)
	if err != nil {
		panic(err)
	}
	return h
}
