package handler

import (
	"net/http"
	"strings"

	"funnybanny-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

// DeviceHandler registers push notification tokens for the signed-in account.
type DeviceHandler struct {
	Repo repository.DeviceTokenRepository
}

func (h DeviceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/devices/token", h.register)
	r.Delete("/devices/token", h.remove)
}

func (h DeviceHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token" validate:"required"`
		Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Repo.Register(r.Context(), repository.RegisterTokenInput{
		AccountID: user.AccountID,
		Token:     strings.TrimSpace(req.Token),
		Platform:  req.Platform,
	}); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h DeviceHandler) remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Repo.Remove(r.Context(), user.AccountID, []string{strings.TrimSpace(req.Token)}); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
