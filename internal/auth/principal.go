// Package auth holds the admin identity: credential checks, the signed
// session token and the Principal attached to authorized requests.
package auth

import (
	"context"
	"time"
)

const RoleAdmin = "admin"

// Principal is the authenticated admin behind a request.
type Principal struct {
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
