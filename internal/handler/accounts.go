package handler

import (
	"context"
	"net/http"

	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// AccountHandler provisions login accounts for staff members and guardians.
type AccountHandler struct {
	Service service.AccountService
}

func (h AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts/staff", h.provisionStaff)
	r.Post("/accounts/parents", h.provisionParents)
}

func (h AccountHandler) provisionStaff(w http.ResponseWriter, r *http.Request) {
	h.provision(w, r, h.Service.ProvisionStaff)
}

func (h AccountHandler) provisionParents(w http.ResponseWriter, r *http.Request) {
	h.provision(w, r, h.Service.ProvisionParents)
}

func (h AccountHandler) provision(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, []string) (service.ProvisionResult, error)) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	res, err := fn(r.Context(), user.AccountID, req.IDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	credentials := make([]map[string]any, 0, len(res.Credentials))
	for _, c := range res.Credentials {
		credentials = append(credentials, map[string]any{
			"accountId": c.AccountID,
			"linkId":    c.LinkID,
			"name":      c.Name,
			"email":     c.Email,
			"phone":     c.Phone,
			"password":  c.Password,
		})
	}
	failures := make([]map[string]any, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, map[string]any{
			"linkId": f.LinkID,
			"name":   f.Name,
			"email":  f.Email,
			"reason": f.Reason,
		})
	}

	message := "Accounts created. Share each password with its owner now; it will not be shown again."
	switch {
	case res.Noop():
		message = "Nobody selected is eligible for an account (already linked or missing an email)."
	case len(res.Credentials) == 0:
		message = "No accounts could be created."
	case len(res.Failures) > 0:
		message = "Some accounts could not be created."
	}
	writeMessage(w, http.StatusOK, message, map[string]any{
		"credentials": credentials,
		"failures":    failures,
		"skipped":     nonNil(res.Skipped),
	})
}
