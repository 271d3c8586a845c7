package handler

import (
	"net/http"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// PortalHandler serves the parent and staff self-service views.
type PortalHandler struct {
	Reports service.ReportService
}

func (h PortalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/portal/parent", h.parent)
	r.Get("/portal/staff", h.staff)
}

func (h PortalHandler) parent(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if user.Role != domain.RoleParent {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.Reports.ParentPortal(r.Context(), callerOf(user), period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	attendance := make([]map[string]any, 0, len(p.Attendance))
	for _, a := range p.Attendance {
		attendance = append(attendance, toAttendanceResponse(a))
	}
	invoices := make([]map[string]any, 0, len(p.Invoices))
	for _, inv := range p.Invoices {
		invoices = append(invoices, toInvoiceResponse(inv))
	}
	var today any
	if p.Today != nil {
		today = toAttendanceResponse(*p.Today)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":      string(period),
		"child":       toChildResponse(p.Child),
		"today":       today,
		"attendance":  attendance,
		"invoices":    invoices,
		"daysPresent": p.DaysPresent,
		"totalPaid":   p.TotalPaid.InexactFloat64(),
	})
}

func (h PortalHandler) staff(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	if user.Role != domain.RoleStaff {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.Reports.StaffPortal(r.Context(), callerOf(user), period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	attendance := make([]map[string]any, 0, len(p.Attendance))
	for _, a := range p.Attendance {
		attendance = append(attendance, toStaffAttendanceResponse(a))
	}
	var today any
	if p.Today != nil {
		today = toStaffAttendanceResponse(*p.Today)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":      string(period),
		"staff":       toStaffResponse(p.Staff),
		"today":       today,
		"attendance":  attendance,
		"daysPresent": p.DaysPresent,
	})
}
