package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/metrics"
	"funnybanny-backend/internal/ports"
	"funnybanny-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a read-only copy of the nursery's data at LoadedAt. It goes stale as
// soon as anything is written; callers load a new one instead of patching it.
type Snapshot struct {
	Children        []domain.Child
	Staff           []domain.Staff
	Invoices        []domain.Invoice
	Attendance      []domain.AttendanceRecord
	StaffAttendance []domain.StaffAttendanceRecord
	Settings        domain.NurserySettings
	LoadedAt        time.Time
}

func (s *Snapshot) Child(id string) *domain.Child {
	for i := range s.Children {
		if s.Children[i].ID == id {
			return &s.Children[i]
		}
	}
	return nil
}

func (s *Snapshot) StaffMember(id string) *domain.Staff {
	for i := range s.Staff {
		if s.Staff[i].ID == id {
			return &s.Staff[i]
		}
	}
	return nil
}

type SnapshotService struct {
	Store           ports.Store
	Children        repository.ChildRepository
	Staff           repository.StaffRepository
	Invoices        repository.InvoiceRepository
	Attendance      repository.AttendanceRepository
	StaffAttendance repository.StaffAttendanceRepository
	Settings        SettingsService
	Clock           Clock
	Logger          *slog.Logger
}

// Load fetches every collection concurrently, promotes overdue invoices (persisting
// the promotion) and makes sure settings exist. Failures to reach the store wrap
// ports.ErrUnavailable.
func (s SnapshotService) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{LoadedAt: s.Clock.current()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Children, err = s.Children.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Staff, err = s.Staff.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Invoices, err = s.Invoices.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Attendance, err = s.Attendance.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.StaffAttendance, err = s.StaffAttendance.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Settings, err = s.Settings.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	updates := PromoteOverdue(snap.Invoices, s.Clock.Today())
	if len(updates) > 0 {
		if err := s.Store.Update(ctx, updates); err != nil {
			return nil, fmt.Errorf("promote overdue invoices: %w", err)
		}
		metrics.InvoicesPromoted.Add(float64(len(updates)))
		s.Logger.Info("invoices promoted to overdue", "count", len(updates))
	}
	return snap, nil
}
