package handler

import (
	"net/http"

	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type ScanHandler struct {
	Service service.ScanService
}

func (h ScanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance/scan", h.scan)
}

// scan answers 200 for every policy outcome; the outcome field says what happened.
func (h ScanHandler) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	res, err := h.Service.Scan(r.Context(), callerOf(user), req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, res.Message, map[string]any{
		"outcome":     string(res.Outcome),
		"action":      string(res.Action),
		"subject":     string(res.Subject),
		"subjectId":   res.SubjectID,
		"subjectName": res.SubjectName,
		"recorded":    res.Outcome == service.ScanRecorded,
	})
}
