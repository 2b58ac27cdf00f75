package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
)

// TokenVerifier verifies bearer tokens into identities.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// RequireAuth verifies the Authorization bearer token and stores the identity
// in the request context. Requests without a valid token are rejected.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(r.Context(), w, httpx.NewError("unauthenticated", "authorization header missing or invalid", http.StatusUnauthorized))
				return
			}
			if verifier == nil {
				httpx.WriteError(r.Context(), w, httpx.NewError("unauthenticated", "authorization service unavailable", http.StatusUnauthorized))
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnavailable) {
					httpx.WriteError(r.Context(), w, httpx.NewError("unavailable", "authorization backend unavailable", http.StatusServiceUnavailable))
					return
				}
				httpx.WriteError(r.Context(), w, httpx.NewError("invalid_token", "bearer token invalid or expired", http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
