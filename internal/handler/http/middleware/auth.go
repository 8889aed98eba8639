package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type claimsKey struct{}

// AuthRequired accepts verified access tokens that have not been revoked and
// stores the caller's identity on the request context.
func AuthRequired(store auth.RevocationStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, tokenClaims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if err == jwtauth.ErrNoTokenFound {
					response.HandleError(w, auth.ErrMissingToken)
					return
				}
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwt.ClaimsFromMap(tokenClaims)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if store != nil {
				revoked, err := store.IsRevoked(r.Context(), jwtauth.TokenFromHeader(r))
				if err != nil {
					slog.Error("Failed to check token revocation", "error", err)
					response.InternalServerError(w, "Failed to verify token")
					return
				}
				if revoked {
					response.HandleError(w, auth.ErrTokenRevoked)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the identity stored by AuthRequired.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}
