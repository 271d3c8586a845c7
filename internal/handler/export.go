package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// ExportHandler downloads attendance and invoices as CSV or XLSX.
type ExportHandler struct {
	Attendance      repository.AttendanceRepository
	StaffAttendance repository.StaffAttendanceRepository
	Invoices        repository.InvoiceRepository
}

func (h ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/export", h.export)
}

// table is an export in row form; the first row is the header.
type table struct {
	sheet  string
	widths []float64
	rows   [][]any
}

func (h ExportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "attendance"
	}

	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return
	}
	inRange := func(date string) bool {
		d, err := domain.ParseDate(date)
		if err != nil {
			return false
		}
		return (startDate == nil || !d.Before(*startDate)) && (endDate == nil || !d.After(*endDate))
	}

	var t table
	switch kind {
	case "attendance":
		t, err = h.attendanceTable(r, inRange)
	case "staff-attendance":
		t, err = h.staffAttendanceTable(r, inRange)
	case "invoices":
		t, err = h.invoiceTable(r, inRange)
	default:
		writeError(w, http.StatusBadRequest, "invalid type (use attendance, staff-attendance or invoices)")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	if startDate != nil && endDate != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", startDate.Format("20060102"), endDate.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := exportCSV(t)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.csv\"", kind, filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportXLSX(t)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.xlsx\"", kind, filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func (h ExportHandler) attendanceTable(r *http.Request, keep func(string) bool) (table, error) {
	items, err := h.Attendance.List(r.Context())
	if err != nil {
		return table{}, err
	}
	t := table{
		sheet:  "Attendance",
		widths: []float64{24, 28, 12, 10, 10, 10},
		rows:   [][]any{{"ID", "Child", "Date", "Check In", "Check Out", "Status"}},
	}
	for _, a := range items {
		if keep(a.Date) {
			t.rows = append(t.rows, []any{a.ID, a.ChildName, a.Date, timeCell(a.CheckIn), timeCell(a.CheckOut), string(a.Status)})
		}
	}
	return t, nil
}

func (h ExportHandler) staffAttendanceTable(r *http.Request, keep func(string) bool) (table, error) {
	items, err := h.StaffAttendance.List(r.Context())
	if err != nil {
		return table{}, err
	}
	t := table{
		sheet:  "Staff Attendance",
		widths: []float64{24, 28, 12, 10, 10, 10},
		rows:   [][]any{{"ID", "Staff", "Date", "Check In", "Check Out", "Status"}},
	}
	for _, a := range items {
		if keep(a.Date) {
			t.rows = append(t.rows, []any{a.ID, a.StaffName, a.Date, timeCell(a.CheckIn), timeCell(a.CheckOut), string(a.Status)})
		}
	}
	return t, nil
}

func (h ExportHandler) invoiceTable(r *http.Request, keep func(string) bool) (table, error) {
	items, err := h.Invoices.List(r.Context())
	if err != nil {
		return table{}, err
	}
	t := table{
		sheet:  "Invoices",
		widths: []float64{24, 28, 12, 12, 12, 10, 12},
		rows:   [][]any{{"ID", "Child", "Amount", "Issue Date", "Due Date", "Status", "Payment Date"}},
	}
	for _, inv := range items {
		if !keep(inv.IssueDate) {
			continue
		}
		paid := ""
		if inv.PaymentDate != nil {
			paid = *inv.PaymentDate
		}
		t.rows = append(t.rows, []any{inv.ID, inv.ChildName, inv.Amount, inv.IssueDate, inv.DueDate, string(inv.Status), paid})
	}
	return t, nil
}

func timeCell(t *domain.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func exportCSV(t table) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			switch v := v.(type) {
			case string:
				record[i] = v
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', 2, 64)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportXLSX(t table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(t.sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for r, row := range t.rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(t.sheet, cell, v)
		}
	}
	for c, width := range t.widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(t.sheet, col, col, width)
	}

	if len(t.rows) > 0 {
		style, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		})
		last, _ := excelize.CoordinatesToCellName(len(t.rows[0]), 1)
		_ = f.SetCellStyle(t.sheet, "A1", last, style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
