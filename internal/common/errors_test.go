package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found wrapped", fmt.Errorf("product 7: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"malformed", ErrMalformedRequest, http.StatusBadRequest},
		{"validation", NewValidationError(map[string]string{"name": "too short"}), http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create: %w", NewValidationError(map[string]string{"price": "bad", "brand": "short"}))
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "validation failed: brand: short; price: bad", verr.Error())
}

func TestRespondWithServiceError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	rec := httptest.NewRecorder()
	RespondWithServiceError(rec, req, NewValidationError(map[string]string{"name": "too short"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Equal(t, map[string]string{"name": "too short"}, fields)

	rec = httptest.NewRecorder()
	RespondWithServiceError(rec, req, errors.New("secret internals"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret internals")
}
