// Package auth issues and verifies storefront sessions. Accounts live in the
// kv store, tokens are HS256 JWTs, and middleware places the verified
// identity in the request context for handlers.
package auth

import (
	"context"
	"strings"
)

// Identity describes the authenticated caller attached to a request context.
type Identity struct {
	UID      string
	Username string
	Email    string
}

type identityContextKey struct{}

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		return nil, false
	}
	return identity, true
}
