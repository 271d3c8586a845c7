package handler

import (
	"net/http"
	"time"

	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// SnapshotHandler returns everything the admin console shows in one response.
type SnapshotHandler struct {
	Service service.SnapshotService
}

func (h SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/snapshot", h.get)
}

func (h SnapshotHandler) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	children := make([]map[string]any, 0, len(snap.Children))
	for _, c := range snap.Children {
		children = append(children, toChildResponse(c))
	}
	staff := make([]map[string]any, 0, len(snap.Staff))
	for _, s := range snap.Staff {
		staff = append(staff, toStaffResponse(s))
	}
	invoices := make([]map[string]any, 0, len(snap.Invoices))
	for _, inv := range snap.Invoices {
		invoices = append(invoices, toInvoiceResponse(inv))
	}
	attendance := make([]map[string]any, 0, len(snap.Attendance))
	for _, a := range snap.Attendance {
		attendance = append(attendance, toAttendanceResponse(a))
	}
	staffAttendance := make([]map[string]any, 0, len(snap.StaffAttendance))
	for _, a := range snap.StaffAttendance {
		staffAttendance = append(staffAttendance, toStaffAttendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"children":        children,
		"staff":           staff,
		"invoices":        invoices,
		"attendance":      attendance,
		"staffAttendance": staffAttendance,
		"settings":        toSettingsResponse(snap.Settings),
		"loadedAt":        snap.LoadedAt.Format(time.RFC3339),
	})
}
