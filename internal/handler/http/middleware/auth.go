package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type identityKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller's Identity in the request context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		identity, ok := jwt.IdentityFromClaims(claims)
		if !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func WithIdentity(ctx context.Context, identity jwt.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the Identity stored by AuthRequired.
func IdentityFrom(ctx context.Context) (jwt.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(jwt.Identity)
	return identity, ok
}
