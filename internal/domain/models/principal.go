package models

import (
	"context"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

// Principal is the caller identity extracted from an access token.
type Principal struct {
	Subject string
	Role    types.UserRole
}

// Anonymous returns the principal of an unauthenticated caller.
func Anonymous() *Principal {
	return &Principal{}
}

func (p *Principal) IsAnonymous() bool {
	return p == nil || p.Subject == ""
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx or an anonymous one.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok && p != nil {
		return p
	}
	return Anonymous()
}
