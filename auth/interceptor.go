package auth

import (
	"context"
	"net/http"
	"strings"

	"livehub/contract"
	"livehub/domain"
	"livehub/errors"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenFromRequest extracts the raw bearer token from a request.
// Browser WebSocket clients cannot set headers on the upgrade request,
// so the token query parameter is accepted as a fallback.
func TokenFromRequest(r *http.Request) string {
	// Expecting the standard "Bearer <token>" format
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// RequireIdentity guards a handler behind a valid token.
// The resolved identity is injected into the request context for
// downstream handlers.
func RequireIdentity(directory contract.Directory, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Retrieve the Authorization header or token parameter
		token := TokenFromRequest(r)
		if token == "" {
			http.Error(w, "authorization token is missing", http.StatusUnauthorized)
			return
		}

		// 2. Validate the token and resolve the caller
		identity, err := directory.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired token", errors.MapToHTTPStatus(err))
			return
		}

		// 3. Continue the execution chain with the enriched context
		next(w, r.WithContext(WithIdentity(r.Context(), identity)))
	}
}

// WithIdentity returns a context carrying the caller's identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
