package handler

import (
	"net/http"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type InvoiceHandler struct {
	Repo     repository.InvoiceRepository
	Children repository.ChildRepository
	Service  service.InvoiceService
	Registry service.RegistryService
}

func (h InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Post("/invoices/mark-paid", h.markPaid)
	r.Put("/invoices/{id}", h.update)
	r.Delete("/invoices", h.delete)
}

type invoiceRequest struct {
	ChildID   string  `json:"childId" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	IssueDate string  `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate   string  `json:"dueDate" validate:"required,datetime=2006-01-02"`
	// Status is never accepted: invoices start unpaid and are paid through mark-paid.
	Status *string `json:"status"`
}

func (req invoiceRequest) statusGiven(w http.ResponseWriter) bool {
	if req.Status == nil {
		return false
	}
	writeError(w, http.StatusBadRequest, "status cannot be set directly; use /invoices/mark-paid")
	return true
}

func (req invoiceRequest) toInput() service.InvoiceInput {
	return service.InvoiceInput{
		ChildID:   req.ChildID,
		Amount:    req.Amount,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
	}
}

func (h InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := r.URL.Query().Get("status")
	childID := r.URL.Query().Get("childId")
	resp := make([]map[string]any, 0, len(items))
	for _, inv := range items {
		if status != "" && string(inv.Status) != status {
			continue
		}
		if childID != "" && inv.ChildID != childID {
			continue
		}
		resp = append(resp, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeJSON(w, r, &req) || req.statusGiven(w) {
		return
	}
	child, err := h.Children.Get(r.Context(), req.ChildID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	inv, err := h.Service.Create(r.Context(), *child, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(*inv))
}

func (h InvoiceHandler) update(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeJSON(w, r, &req) || req.statusGiven(w) {
		return
	}
	child, err := h.Children.Get(r.Context(), req.ChildID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	inv, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), *child, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(*inv))
}

// markPaid pays the selected invoices and issues one successor for each.
func (h InvoiceHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	res, err := h.Service.MarkPaid(r.Context(), user.AccountID, req.IDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	successors := make([]map[string]any, 0, len(res.Successors))
	for _, inv := range res.Successors {
		successors = append(successors, toInvoiceResponse(inv))
	}
	message := "Invoices marked as paid."
	switch res.Outcome {
	case service.MarkPaidNoop:
		message = "No unpaid invoices were selected."
	case service.MarkPaidPartial:
		message = "Some invoices were already paid or no longer exist."
	}
	writeMessage(w, http.StatusOK, message, map[string]any{
		"outcome":     string(res.Outcome),
		"paid":        nonNil(res.Paid),
		"alreadyPaid": nonNil(res.AlreadyPaid),
		"missing":     nonNil(res.Missing),
		"successors":  successors,
	})
}

func (h InvoiceHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if err := h.Registry.DeleteInvoices(r.Context(), user.AccountID, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": len(req.IDs)})
}

func toInvoiceResponse(inv domain.Invoice) map[string]any {
	var paymentDate any
	if inv.PaymentDate != nil {
		paymentDate = *inv.PaymentDate
	}
	return map[string]any{
		"id":          inv.ID,
		"childId":     inv.ChildID,
		"childName":   inv.ChildName,
		"amount":      inv.Amount,
		"issueDate":   inv.IssueDate,
		"dueDate":     inv.DueDate,
		"status":      string(inv.Status),
		"paymentDate": paymentDate,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
