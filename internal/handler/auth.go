package handler

import (
	"net/http"
	"strings"
	"time"

	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Service *service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/exchange", h.exchange)
	r.Post("/auth/refresh", h.refresh)
}

func (h AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.logout)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.SignIn(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

// exchange trades an ID token obtained from the identity provider for a session.
func (h AuthHandler) exchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.Exchange(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

func (h AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Service.SignOut(r.Context(), user.AccountID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeAuthResponse(w http.ResponseWriter, res *service.Session) {
	writeJSON(w, http.StatusOK, map[string]any{
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresAt":    res.ExpiresAt.UTC().Format(time.RFC3339),
		"user": map[string]any{
			"id":     res.AccountID,
			"role":   string(res.Profile.Role),
			"linkId": res.Profile.LinkID,
		},
	})
}
