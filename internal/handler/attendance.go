package handler

import (
	"net/http"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// AttendanceHandler lets admins view and correct attendance by hand.
type AttendanceHandler struct {
	Attendance      repository.AttendanceRepository
	StaffAttendance repository.StaffAttendanceRepository
	Registry        service.RegistryService
	Clock           service.Clock
}

func (h AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/attendance/{subject}", h.list)
	r.Post("/attendance/{subject}/check-in", h.checkIn)
	r.Post("/attendance/{subject}/{id}/check-out", h.checkOut)
	r.Put("/attendance/{subject}/{id}", h.edit)
	r.Delete("/attendance/{subject}", h.delete)
}

func subjectParam(w http.ResponseWriter, r *http.Request) (service.SubjectKind, bool) {
	switch chi.URLParam(r, "subject") {
	case "children", "child":
		return service.SubjectChild, true
	case "staff":
		return service.SubjectStaff, true
	}
	writeError(w, http.StatusNotFound, "unknown attendance subject")
	return "", false
}

// list returns the records of one day, today unless ?date is given.
func (h AttendanceHandler) list(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectParam(w, r)
	if !ok {
		return
	}
	date := h.Clock.Today()
	if d, err := parseDateQuery(r, "date"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	} else if d != nil {
		date = d.Format(dateLayout)
	}

	resp := []map[string]any{}
	if subject == service.SubjectChild {
		items, err := h.Attendance.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		for _, a := range items {
			if a.Date == date {
				resp = append(resp, toAttendanceResponse(a))
			}
		}
	} else {
		items, err := h.StaffAttendance.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		for _, a := range items {
			if a.Date == date {
				resp = append(resp, toStaffAttendanceResponse(a))
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "items": resp})
}

func (h AttendanceHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectParam(w, r)
	if !ok {
		return
	}
	var req struct {
		ID   string `json:"id" validate:"required"`
		Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.Registry.ManualCheckIn(r.Context(), subject, req.ID, req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h AttendanceHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectParam(w, r)
	if !ok {
		return
	}
	if err := h.Registry.ManualCheckOut(r.Context(), subject, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h AttendanceHandler) edit(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectParam(w, r)
	if !ok {
		return
	}
	var req struct {
		CheckIn  *domain.TimeOfDay `json:"checkIn"`
		CheckOut *domain.TimeOfDay `json:"checkOut"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.Registry.EditAttendance(r.Context(), subject, chi.URLParam(r, "id"), service.AttendanceEdit{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h AttendanceHandler) delete(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectParam(w, r)
	if !ok {
		return
	}
	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Registry.DeleteAttendance(r.Context(), subject, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": len(req.IDs)})
}

func toRecordResponse(rec any) map[string]any {
	switch rec := rec.(type) {
	case *domain.AttendanceRecord:
		return toAttendanceResponse(*rec)
	case *domain.StaffAttendanceRecord:
		return toStaffAttendanceResponse(*rec)
	}
	return nil
}

func timeOrNil(t *domain.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func toAttendanceResponse(a domain.AttendanceRecord) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"childId":   a.ChildID,
		"childName": a.ChildName,
		"date":      a.Date,
		"checkIn":   timeOrNil(a.CheckIn),
		"checkOut":  timeOrNil(a.CheckOut),
		"status":    string(a.Status),
	}
}

func toStaffAttendanceResponse(a domain.StaffAttendanceRecord) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"staffId":   a.StaffID,
		"staffName": a.StaffName,
		"date":      a.Date,
		"checkIn":   timeOrNil(a.CheckIn),
		"checkOut":  timeOrNil(a.CheckOut),
		"status":    string(a.Status),
	}
}
