package handler

import (
	"net/http"
	"strconv"

	"funnybanny-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type ReportHandler struct {
	Service service.ReportService
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/summary", h.summary)
	r.Get("/reports/dashboard", h.dashboard)
}

func (h ReportHandler) summary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = parsed
	}
	s, err := h.Service.Summary(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"children": s.Children,
		"staff":    s.Staff,
		"finances": map[string]any{
			"totalPaid":   s.Finances.TotalPaid.InexactFloat64(),
			"totalUnpaid": s.Finances.TotalUnpaid.InexactFloat64(),
			"paidCount":   s.Finances.PaidCount,
			"unpaidCount": s.Finances.UnpaidCount,
		},
		"attendance": map[string]any{
			"days":            s.Attendance.Days,
			"present":         s.Attendance.Present,
			"averageDaily":    s.Attendance.AverageDaily.InexactFloat64(),
			"estimatedAbsent": s.Attendance.EstimatedAbsent,
		},
		"trend": toTrendResponse(s.Trend),
	})
}

func (h ReportHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recent := make([]map[string]any, 0, len(d.RecentCheckIns))
	for _, a := range d.RecentCheckIns {
		recent = append(recent, toAttendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"children":       d.Children,
		"presentToday":   d.PresentToday,
		"openInvoices":   d.OpenInvoices,
		"recentCheckIns": recent,
		"week":           toTrendResponse(d.Week),
	})
}

func toTrendResponse(points []service.TrendPoint) []map[string]any {
	resp := make([]map[string]any, 0, len(points))
	for _, p := range points {
		resp = append(resp, map[string]any{
			"date":    p.Date,
			"present": p.Present,
			"absent":  p.Absent,
		})
	}
	return resp
}
