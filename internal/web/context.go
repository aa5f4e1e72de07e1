// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package web

import (
	"context"

	"github.com/wolvespetstore/petstore/internal/auth"
)

type identityKey struct{}

func withIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity attached by a session gate, or nil when
// the request did not pass one.
func IdentityFrom(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey{}).(*auth.Identity)
	return identity
}

// routeInfo is filled in by the matched route so outer middleware can label
// metrics with the pattern rather than the raw path.
type routeInfo struct {
	pattern string
}

type routeInfoKey struct{}

func routeInfoFrom(ctx context.Context) *routeInfo {
	info, _ := ctx.Value(routeInfoKey{}).(*routeInfo)
	return info
}

func withRouteInfo(ctx context.Context, info *routeInfo) context.Context {
	return context.WithValue(ctx, routeInfoKey{}, info)
}
