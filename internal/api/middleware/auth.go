package middleware

import (
	"context"
	"errors"
	"net/http"

	"catalog_api/internal/common"
	"catalog_api/internal/common/security"
	"catalog_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const PrincipalCtxKey contextKey = "principal"

// Verifier reads a bearer token from the Authorization header only and
// records the verification result for Authenticator.
func Verifier(next http.Handler) http.Handler {
	return jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader)(next)
}

// Authenticator rejects requests without a valid, unexpired access token and
// puts the token's identity in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}
		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		principal, err := security.PrincipalFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalCtxKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipalFromContext(r.Context())
		if !ok || !principal.IsAdmin() {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetPrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(*model.Principal)
	return principal, ok && principal != nil
}
