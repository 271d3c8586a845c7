package handler

import (
	"net/http"
	"strings"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type ChildHandler struct {
	Repo     repository.ChildRepository
	Registry service.RegistryService
}

func (h ChildHandler) RegisterRoutes(r chi.Router) {
	r.Get("/children", h.list)
	r.Post("/children", h.create)
	r.Get("/children/{id}", h.get)
	r.Put("/children/{id}", h.update)
	r.Delete("/children", h.delete)
}

type guardianRequest struct {
	Name     string `json:"name" validate:"required"`
	Relation string `json:"relation" validate:"required,oneof=father mother other"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type childRequest struct {
	Name         string          `json:"name" validate:"required"`
	Age          int             `json:"age" validate:"gte=0,lte=12"`
	Address      string          `json:"address"`
	HealthStatus string          `json:"healthStatus"`
	Guardian     guardianRequest `json:"guardian"`
}

func (req childRequest) toDomain() domain.Child {
	return domain.Child{
		Name:         strings.TrimSpace(req.Name),
		Age:          req.Age,
		Address:      req.Address,
		HealthStatus: req.HealthStatus,
		Guardian: domain.Guardian{
			Name:     strings.TrimSpace(req.Guardian.Name),
			Relation: domain.GuardianRelation(req.Guardian.Relation),
			Phone:    req.Guardian.Phone,
			Email:    strings.ToLower(strings.TrimSpace(req.Guardian.Email)),
		},
	}
}

// idsRequest is the body of batch deletes and batch actions.
type idsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

func (h ChildHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, toChildResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ChildHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildResponse(*c))
}

func (h ChildHandler) create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	c, err := h.Registry.AddChild(r.Context(), user.AccountID, req.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChildResponse(*c))
}

func (h ChildHandler) update(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Registry.UpdateChild(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildResponse(*c))
}

func (h ChildHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Registry.DeleteChildren(r.Context(), user.AccountID, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": len(req.IDs)})
}

func toChildResponse(c domain.Child) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"age":          c.Age,
		"address":      c.Address,
		"healthStatus": c.HealthStatus,
		"qrCodeId":     c.QRCodeID,
		"guardian": map[string]any{
			"name":      c.Guardian.Name,
			"relation":  string(c.Guardian.Relation),
			"phone":     c.Guardian.Phone,
			"email":     c.Guardian.Email,
			"accountId": c.Guardian.AccountID,
		},
	}
}
