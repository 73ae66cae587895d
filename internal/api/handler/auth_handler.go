package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"catalog_api/internal/app/service"
	"catalog_api/internal/common"

	"github.com/go-chi/chi/v5"
)

// authBodyLimit caps login/refresh/logout bodies; they never carry files.
const authBodyLimit = 64 << 10

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	body, err := readRequestBody(w, r, authBodyLimit)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	defer body.Close()

	id, err := strconv.Atoi(strings.TrimSpace(body.Fields["id"]))
	if err != nil {
		common.RespondWithServiceError(w, r, fmt.Errorf("id must be an integer: %w", common.ErrMalformedRequest))
		return
	}

	resp, err := h.authService.Login(r.Context(), service.LoginRequest{ID: id, Password: body.Fields["password"]})
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := readRefreshRequest(w, r)
	if !ok {
		return
	}
	resp, err := h.authService.Refresh(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	req, ok := readRefreshRequest(w, r)
	if !ok {
		return
	}
	if err := h.authService.Logout(r.Context(), req); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Logged out"})
}

func readRefreshRequest(w http.ResponseWriter, r *http.Request) (service.RefreshRequest, bool) {
	body, err := readRequestBody(w, r, authBodyLimit)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return service.RefreshRequest{}, false
	}
	defer body.Close()
	return service.RefreshRequest{RefreshToken: body.Fields["refreshToken"]}, true
}
