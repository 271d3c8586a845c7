package handler

import (
	"net/http"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	Service   service.SettingsService
	NurseryID string
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.save)
	r.Get("/settings/nursery-code", h.nurseryCode)
}

// nurseryCode returns the payload to print on the staff self check-in code.
func (h SettingsHandler) nurseryCode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"payload": service.NurseryPayload(h.NurseryID)})
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CheckInStartTime    domain.TimeOfDay `json:"checkInStartTime"`
		CheckInEndTime      domain.TimeOfDay `json:"checkInEndTime"`
		CheckOutStartTime   domain.TimeOfDay `json:"checkOutStartTime"`
		CheckOutEndTime     domain.TimeOfDay `json:"checkOutEndTime"`
		NextDueDateStrategy string           `json:"nextDueDateStrategy" validate:"required,oneof=first_day_next_month last_day_next_month"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.Service.Save(r.Context(), domain.NurserySettings{
		CheckInStartTime:    req.CheckInStartTime,
		CheckInEndTime:      req.CheckInEndTime,
		CheckOutStartTime:   req.CheckOutStartTime,
		CheckOutEndTime:     req.CheckOutEndTime,
		NextDueDateStrategy: domain.DueDateStrategy(req.NextDueDateStrategy),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func toSettingsResponse(s domain.NurserySettings) map[string]any {
	return map[string]any{
		"checkInStartTime":    s.CheckInStartTime.String(),
		"checkInEndTime":      s.CheckInEndTime.String(),
		"checkOutStartTime":   s.CheckOutStartTime.String(),
		"checkOutEndTime":     s.CheckOutEndTime.String(),
		"nextDueDateStrategy": string(s.NextDueDateStrategy),
	}
}
