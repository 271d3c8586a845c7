package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"funnybanny-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrNotLinked     = errors.New("account is not linked to a record")
)

type FinancialSummary struct {
	TotalPaid   decimal.Decimal
	TotalUnpaid decimal.Decimal
	PaidCount   int
	UnpaidCount int
}

// SummarizeFinances splits invoices into paid and outstanding (unpaid or overdue).
func SummarizeFinances(invoices []domain.Invoice) FinancialSummary {
	sum := FinancialSummary{TotalPaid: decimal.Zero, TotalUnpaid: decimal.Zero}
	for _, inv := range invoices {
		amount := decimal.NewFromFloat(inv.Amount)
		if inv.Status == domain.InvoicePaid {
			sum.TotalPaid = sum.TotalPaid.Add(amount)
			sum.PaidCount++
			continue
		}
		sum.TotalUnpaid = sum.TotalUnpaid.Add(amount)
		sum.UnpaidCount++
	}
	return sum
}

type AttendanceSummary struct {
	Days         int
	Present      int
	AverageDaily decimal.Decimal
	// EstimatedAbsent assumes every child was expected on every recorded day.
	EstimatedAbsent int
}

func SummarizeAttendance(records []domain.AttendanceRecord, childCount int) AttendanceSummary {
	days := map[string]struct{}{}
	present := 0
	for _, a := range records {
		days[a.Date] = struct{}{}
		if a.Status == domain.AttendancePresent {
			present++
		}
	}
	sum := AttendanceSummary{Days: len(days), Present: present, AverageDaily: decimal.Zero}
	if sum.Days > 0 {
		sum.AverageDaily = decimal.NewFromInt(int64(present)).Div(decimal.NewFromInt(int64(sum.Days))).Round(1)
	}
	sum.EstimatedAbsent = childCount*sum.Days - present
	if sum.EstimatedAbsent < 0 {
		sum.EstimatedAbsent = 0
	}
	return sum
}

type TrendPoint struct {
	Date    string
	Present int
	Absent  int
}

// AttendanceTrend counts present records per day for the days ending on today, oldest first.
func AttendanceTrend(records []domain.AttendanceRecord, today time.Time, days, childCount int) []TrendPoint {
	if days <= 0 {
		return nil
	}
	index := make(map[string]int, days)
	points := make([]TrendPoint, days)
	for i := 0; i < days; i++ {
		d := domain.FormatDate(today.AddDate(0, 0, i-days+1))
		points[i].Date = d
		index[d] = i
	}
	for _, a := range records {
		if i, ok := index[a.Date]; ok && a.Status == domain.AttendancePresent {
			points[i].Present++
		}
	}
	for i := range points {
		points[i].Absent = max(childCount-points[i].Present, 0)
	}
	return points
}

type Dashboard struct {
	Children       int
	PresentToday   int
	OpenInvoices   int
	RecentCheckIns []domain.AttendanceRecord
	Week           []TrendPoint
}

const recentCheckInLimit = 5

// BuildDashboard summarizes the current day. Recent check-ins are the latest five
// of today, newest first.
func BuildDashboard(snap *Snapshot, today time.Time) Dashboard {
	day := domain.FormatDate(today)
	d := Dashboard{Children: len(snap.Children)}
	var todays []domain.AttendanceRecord
	for _, a := range snap.Attendance {
		if a.Date != day {
			continue
		}
		todays = append(todays, a)
		if a.Status == domain.AttendancePresent {
			d.PresentToday++
		}
	}
	for _, inv := range snap.Invoices {
		if inv.Status == domain.InvoiceUnpaid || inv.Status == domain.InvoiceOverdue {
			d.OpenInvoices++
		}
	}
	sort.SliceStable(todays, func(i, j int) bool {
		return checkInMinutes(todays[i].CheckIn) > checkInMinutes(todays[j].CheckIn)
	})
	if len(todays) > recentCheckInLimit {
		todays = todays[:recentCheckInLimit]
	}
	d.RecentCheckIns = todays
	d.Week = AttendanceTrend(snap.Attendance, today, 7, len(snap.Children))
	return d
}

func checkInMinutes(t *domain.TimeOfDay) int {
	if t == nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

type Period string

const (
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodAllTime   Period = "all_time"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodThisMonth, nil
	case PeriodThisMonth, PeriodLastMonth, PeriodAllTime:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Contains reports whether date ("YYYY-MM-DD") falls in the period relative to today.
// this_month starts on the first of the current month and is open ended.
func (p Period) Contains(date string, today time.Time) bool {
	d, err := domain.ParseDate(date)
	if err != nil {
		return false
	}
	firstThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodThisMonth:
		return !d.Before(firstThis)
	case PeriodLastMonth:
		firstLast := firstThis.AddDate(0, -1, 0)
		return !d.Before(firstLast) && d.Before(firstThis)
	}
	return true
}

type ParentPortal struct {
	Child       domain.Child
	Today       *domain.AttendanceRecord
	Attendance  []domain.AttendanceRecord
	Invoices    []domain.Invoice
	DaysPresent int
	TotalPaid   decimal.Decimal
}

type StaffPortal struct {
	Staff       domain.Staff
	Today       *domain.StaffAttendanceRecord
	Attendance  []domain.StaffAttendanceRecord
	DaysPresent int
}

type Summary struct {
	Finances   FinancialSummary
	Attendance AttendanceSummary
	Trend      []TrendPoint
	Children   int
	Staff      int
}

// ReportService derives read-only views from a fresh snapshot.
type ReportService struct {
	Snapshots SnapshotService
	Clock     Clock
}

func (s ReportService) Summary(ctx context.Context, trendDays int) (Summary, error) {
	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Finances:   SummarizeFinances(snap.Invoices),
		Attendance: SummarizeAttendance(snap.Attendance, len(snap.Children)),
		Trend:      AttendanceTrend(snap.Attendance, s.Clock.current(), trendDays, len(snap.Children)),
		Children:   len(snap.Children),
		Staff:      len(snap.Staff),
	}, nil
}

func (s ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(snap, s.Clock.current()), nil
}

// ParentPortal shows the child linked to a parent account.
func (s ReportService) ParentPortal(ctx context.Context, caller Caller, period Period) (*ParentPortal, error) {
	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	child := snap.Child(caller.LinkID)
	if child == nil {
		return nil, ErrNotLinked
	}
	return BuildParentPortal(snap, *child, period, s.Clock.current()), nil
}

func BuildParentPortal(snap *Snapshot, child domain.Child, period Period, now time.Time) *ParentPortal {
	today := domain.FormatDate(now)
	p := &ParentPortal{Child: child, Attendance: []domain.AttendanceRecord{}, Invoices: []domain.Invoice{}, TotalPaid: decimal.Zero}
	for _, a := range snap.Attendance {
		if a.ChildID != child.ID {
			continue
		}
		if a.Date == today {
			rec := a
			p.Today = &rec
		}
		if !period.Contains(a.Date, now) {
			continue
		}
		p.Attendance = append(p.Attendance, a)
		if a.Status == domain.AttendancePresent {
			p.DaysPresent++
		}
	}
	for _, inv := range snap.Invoices {
		if inv.ChildID != child.ID || !period.Contains(inv.IssueDate, now) {
			continue
		}
		p.Invoices = append(p.Invoices, inv)
		if inv.Status == domain.InvoicePaid {
			p.TotalPaid = p.TotalPaid.Add(decimal.NewFromFloat(inv.Amount))
		}
	}
	sort.SliceStable(p.Attendance, func(i, j int) bool { return p.Attendance[i].Date > p.Attendance[j].Date })
	sort.SliceStable(p.Invoices, func(i, j int) bool { return p.Invoices[i].IssueDate > p.Invoices[j].IssueDate })
	return p
}

// StaffPortal shows the signed-in staff member's own attendance.
func (s ReportService) StaffPortal(ctx context.Context, caller Caller, period Period) (*StaffPortal, error) {
	snap, err := s.Snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	member := findCallerStaff(snap.Staff, caller)
	if member == nil {
		return nil, ErrNotLinked
	}
	now := s.Clock.current()
	today := domain.FormatDate(now)
	p := &StaffPortal{Staff: *member, Attendance: []domain.StaffAttendanceRecord{}}
	for _, a := range snap.StaffAttendance {
		if a.StaffID != member.ID {
			continue
		}
		if a.Date == today {
			rec := a
			p.Today = &rec
		}
		if !period.Contains(a.Date, now) {
			continue
		}
		p.Attendance = append(p.Attendance, a)
		if a.Status == domain.AttendancePresent {
			p.DaysPresent++
		}
	}
	sort.SliceStable(p.Attendance, func(i, j int) bool { return p.Attendance[i].Date > p.Attendance[j].Date })
	return p, nil
}
