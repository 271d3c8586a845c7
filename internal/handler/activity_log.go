package handler

import (
	"net/http"
	"strconv"
	"time"

	"funnybanny-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ActivityLogHandler struct {
	Repo repository.ActivityLogRepository
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/logs", h.list)
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, map[string]any{
			"id":        l.ID,
			"title":     l.Title,
			"message":   l.Message,
			"actor":     l.Actor,
			"type":      string(l.Type),
			"timestamp": l.LoggedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
