package service

import (
	"context"
	"testing"
	"time"

	"funnybanny-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func present(childID, date string, hour, minute int) domain.AttendanceRecord {
	return domain.AttendanceRecord{ID: childID + date, ChildID: childID, Date: date, CheckIn: tod(hour, minute), Status: domain.AttendancePresent}
}

func TestSummarizeFinances(t *testing.T) {
	sum := SummarizeFinances([]domain.Invoice{
		{Amount: 100.10, Status: domain.InvoicePaid},
		{Amount: 200.20, Status: domain.InvoicePaid},
		{Amount: 50, Status: domain.InvoiceUnpaid},
		{Amount: 25.5, Status: domain.InvoiceOverdue},
	})
	assert.True(t, decimal.RequireFromString("300.30").Equal(sum.TotalPaid), sum.TotalPaid.String())
	assert.True(t, decimal.RequireFromString("75.5").Equal(sum.TotalUnpaid), sum.TotalUnpaid.String())
	assert.Equal(t, 2, sum.PaidCount)
	assert.Equal(t, 2, sum.UnpaidCount)
}

func TestSummarizeAttendance(t *testing.T) {
	records := []domain.AttendanceRecord{
		present("c1", "2024-03-01", 8, 0),
		present("c2", "2024-03-01", 8, 5),
		present("c1", "2024-03-04", 8, 0),
		{ChildID: "c2", Date: "2024-03-04", Status: domain.AttendanceAbsent},
	}
	sum := SummarizeAttendance(records, 3)
	assert.Equal(t, 2, sum.Days)
	assert.Equal(t, 3, sum.Present)
	assert.Equal(t, "1.5", sum.AverageDaily.String())
	assert.Equal(t, 3, sum.EstimatedAbsent)

	empty := SummarizeAttendance(nil, 3)
	assert.Equal(t, 0, empty.Days)
	assert.True(t, empty.AverageDaily.IsZero())
	assert.Equal(t, 0, empty.EstimatedAbsent)
}

func TestAttendanceTrend(t *testing.T) {
	records := []domain.AttendanceRecord{
		present("c1", "2024-03-04", 8, 0),
		present("c2", "2024-03-04", 8, 0),
		present("c1", "2024-03-02", 8, 0),
		present("c1", "2024-02-20", 8, 0),
	}
	points := AttendanceTrend(records, at(12, 0), 3, 2)
	assert.Equal(t, []TrendPoint{
		{Date: "2024-03-02", Present: 1, Absent: 1},
		{Date: "2024-03-03", Present: 0, Absent: 2},
		{Date: "2024-03-04", Present: 2, Absent: 0},
	}, points)
	assert.Nil(t, AttendanceTrend(records, at(12, 0), 0, 2))
}

func TestBuildDashboard(t *testing.T) {
	snap := &Snapshot{
		Children: []domain.Child{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"}, {ID: "c5"}, {ID: "c6"}},
		Attendance: []domain.AttendanceRecord{
			present("c1", "2024-03-04", 7, 10),
			present("c2", "2024-03-04", 9, 40),
			present("c3", "2024-03-04", 8, 0),
			present("c4", "2024-03-04", 8, 30),
			present("c5", "2024-03-04", 7, 50),
			present("c6", "2024-03-04", 9, 0),
			present("c1", "2024-03-03", 9, 55),
		},
		Invoices: []domain.Invoice{
			{Status: domain.InvoiceUnpaid}, {Status: domain.InvoiceOverdue}, {Status: domain.InvoicePaid},
		},
	}
	d := BuildDashboard(snap, at(10, 0))
	assert.Equal(t, 6, d.Children)
	assert.Equal(t, 6, d.PresentToday)
	assert.Equal(t, 2, d.OpenInvoices)
	require.Len(t, d.RecentCheckIns, 5)
	var ids []string
	for _, a := range d.RecentCheckIns {
		ids = append(ids, a.ChildID)
	}
	assert.Equal(t, []string{"c2", "c6", "c4", "c3", "c5"}, ids)
	require.Len(t, d.Week, 7)
	assert.Equal(t, "2024-03-04", d.Week[6].Date)
	assert.Equal(t, 1, d.Week[5].Present)
}

func TestPeriodContains(t *testing.T) {
	today := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		period Period
		date   string
		want   bool
	}{
		{PeriodThisMonth, "2024-03-01", true},
		{PeriodThisMonth, "2024-02-29", false},
		{PeriodThisMonth, "2024-04-02", true},
		{PeriodLastMonth, "2024-02-01", true},
		{PeriodLastMonth, "2024-02-29", true},
		{PeriodLastMonth, "2024-03-01", false},
		{PeriodLastMonth, "2024-01-31", false},
		{PeriodAllTime, "2019-06-01", true},
		{PeriodAllTime, "garbage", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.period)+" "+tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Contains(tt.date, today))
		})
	}

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, PeriodLastMonth.Contains("2023-12-31", jan))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodThisMonth, p)

	p, err = ParsePeriod("last_month")
	require.NoError(t, err)
	assert.Equal(t, PeriodLastMonth, p)

	_, err = ParsePeriod("yesterday")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBuildParentPortal(t *testing.T) {
	lina := domain.Child{ID: "c1", Name: "Lina"}
	snap := &Snapshot{
		Children: []domain.Child{lina, {ID: "c2"}},
		Attendance: []domain.AttendanceRecord{
			present("c1", "2024-03-01", 8, 0),
			present("c1", "2024-03-04", 8, 0),
			present("c1", "2024-02-28", 8, 0),
			present("c2", "2024-03-04", 8, 0),
		},
		Invoices: []domain.Invoice{
			{ID: "i1", ChildID: "c1", Amount: 100, IssueDate: "2024-03-01", Status: domain.InvoicePaid},
			{ID: "i2", ChildID: "c1", Amount: 100, IssueDate: "2024-03-03", Status: domain.InvoiceUnpaid},
			{ID: "i3", ChildID: "c1", Amount: 90, IssueDate: "2024-02-01", Status: domain.InvoicePaid},
			{ID: "i4", ChildID: "c2", Amount: 70, IssueDate: "2024-03-01", Status: domain.InvoicePaid},
		},
	}

	p := BuildParentPortal(snap, lina, PeriodThisMonth, at(9, 0))
	require.NotNil(t, p.Today)
	assert.Equal(t, "2024-03-04", p.Today.Date)
	assert.Equal(t, 2, p.DaysPresent)
	require.Len(t, p.Invoices, 2)
	assert.Equal(t, "i2", p.Invoices[0].ID, "newest first")
	assert.True(t, decimal.NewFromInt(100).Equal(p.TotalPaid))

	all := BuildParentPortal(snap, lina, PeriodAllTime, at(9, 0))
	assert.Equal(t, 3, all.DaysPresent)
	assert.True(t, decimal.NewFromInt(190).Equal(all.TotalPaid))
	assert.Equal(t, "2024-03-04", all.Attendance[0].Date)
}

func TestReportServicePortals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	child := env.addChild(t, domain.Child{Name: "Lina"})
	member := env.addStaff(t, domain.Staff{Name: "Sara", AccountID: "uid-sara"})
	_, err := env.staffAtt.Create(ctx, domain.StaffAttendanceRecord{StaffID: member.ID, StaffName: "Sara", Date: "2024-03-04", CheckIn: tod(7, 0), Status: domain.AttendancePresent})
	require.NoError(t, err)

	svc := ReportService{Snapshots: env.snapshots(), Clock: env.clock}

	p, err := svc.ParentPortal(ctx, Caller{Role: domain.RoleParent, LinkID: child.ID}, PeriodThisMonth)
	require.NoError(t, err)
	assert.Equal(t, "Lina", p.Child.Name)
	assert.Nil(t, p.Today)

	_, err = svc.ParentPortal(ctx, Caller{Role: domain.RoleParent, LinkID: "gone"}, PeriodThisMonth)
	assert.ErrorIs(t, err, ErrNotLinked)

	sp, err := svc.StaffPortal(ctx, Caller{AccountID: "uid-sara", Role: domain.RoleStaff}, PeriodThisMonth)
	require.NoError(t, err)
	assert.Equal(t, member.ID, sp.Staff.ID)
	require.NotNil(t, sp.Today)
	assert.Equal(t, 1, sp.DaysPresent)

	_, err = svc.StaffPortal(ctx, Caller{AccountID: "uid-x", Role: domain.RoleStaff}, PeriodThisMonth)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestReportServiceSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	env.addChild(t, domain.Child{Name: "Lina"})
	env.addInvoice(t, domain.Invoice{ChildID: "c1", Amount: 120, IssueDate: "2024-02-01", DueDate: "2024-02-10", Status: domain.InvoiceUnpaid})

	svc := ReportService{Snapshots: env.snapshots(), Clock: env.clock}
	sum, err := svc.Summary(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Children)
	assert.Len(t, sum.Trend, 14)
	assert.Equal(t, 1, sum.Finances.UnpaidCount)

	invoices, err := env.invoices.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceOverdue, invoices[0].Status, "loading a report promotes overdue invoices")
}
