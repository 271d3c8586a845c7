package handler

import (
	"net/http"
	"strings"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type StaffHandler struct {
	Repo     repository.StaffRepository
	Registry service.RegistryService
}

func (h StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff", h.list)
	r.Post("/staff", h.create)
	r.Get("/staff/{id}", h.get)
	r.Put("/staff/{id}", h.update)
	r.Delete("/staff", h.delete)
}

type staffRequest struct {
	Name           string `json:"name" validate:"required"`
	Role           string `json:"role" validate:"required,oneof=teacher supervisor admin_staff"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
}

func (req staffRequest) toDomain() domain.Staff {
	return domain.Staff{
		Name:           strings.TrimSpace(req.Name),
		Role:           domain.StaffRole(req.Role),
		Specialization: req.Specialization,
		Phone:          req.Phone,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
	}
}

func (h StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, toStaffResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h StaffHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(*s))
}

func (h StaffHandler) create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	s, err := h.Registry.AddStaff(r.Context(), user.AccountID, req.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffResponse(*s))
}

func (h StaffHandler) update(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.Registry.UpdateStaff(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(*s))
}

func (h StaffHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Registry.DeleteStaff(r.Context(), user.AccountID, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": len(req.IDs)})
}

func toStaffResponse(s domain.Staff) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"name":           s.Name,
		"role":           string(s.Role),
		"specialization": s.Specialization,
		"phone":          s.Phone,
		"email":          s.Email,
		"qrCodeId":       s.QRCodeID,
		"accountId":      s.AccountID,
	}
}
