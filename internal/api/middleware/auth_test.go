package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog_api/internal/common/security"
	"catalog_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(seen **model.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(Verifier)
	r.With(Authenticator).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = GetPrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(Authenticator, AdminOnly).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func do(t *testing.T, h http.Handler, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthenticatorAttachesPrincipal(t *testing.T) {
	security.InitJWT([]byte("test-secret"), time.Hour)
	var seen *model.Principal
	h := newProtectedRouter(&seen)

	token, err := security.GenerateToken(5, model.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(t, h, "/me", token))
	require.NotNil(t, seen)
	assert.Equal(t, model.Principal{ID: 5, Role: model.RoleUser}, *seen)
}

func TestAuthenticatorRejects(t *testing.T) {
	security.InitJWT([]byte("test-secret"), time.Hour)
	var seen *model.Principal
	h := newProtectedRouter(&seen)

	_, expired, err := security.TokenAuth.Encode(jwt.MapClaims{
		"id": 1, "role": model.RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	_, noRole, err := security.TokenAuth.Encode(jwt.MapClaims{"id": 1})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "/me", "garbage"))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "/me", expired))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "/me", noRole))
	assert.Nil(t, seen)
}

func TestAdminOnly(t *testing.T) {
	security.InitJWT([]byte("test-secret"), time.Hour)
	var seen *model.Principal
	h := newProtectedRouter(&seen)

	userToken, err := security.GenerateToken(5, model.RoleUser)
	require.NoError(t, err)
	adminToken, err := security.GenerateToken(5, model.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(t, h, "/admin", userToken))
	assert.Equal(t, http.StatusNoContent, do(t, h, "/admin", adminToken))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "/admin", ""))
}
