package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidRecord  = errors.New("invalid record")
	ErrAlreadyChecked = errors.New("attendance already recorded")
)

// RegistryService maintains children, staff and their attendance records by hand.
type RegistryService struct {
	Children        repository.ChildRepository
	Staff           repository.StaffRepository
	Invoices        repository.InvoiceRepository
	Attendance      repository.AttendanceRepository
	StaffAttendance repository.StaffAttendanceRepository
	Activity        repository.ActivityLogRepository
	Clock           Clock
	Logger          *slog.Logger
}

// AddChild stores a new child with a fresh QR code id. Account links are never taken
// from input; they are set by provisioning only.
func (s RegistryService) AddChild(ctx context.Context, actor string, c domain.Child) (*domain.Child, error) {
	c.QRCodeID = uuid.NewString()
	c.Guardian.AccountID = ""
	created, err := s.Children.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logActivity(ctx, actor, "Children", fmt.Sprintf("%s added", created.Name))
	return created, nil
}

// UpdateChild replaces a child's details, keeping its QR code id and guardian account.
func (s RegistryService) UpdateChild(ctx context.Context, id string, c domain.Child) (*domain.Child, error) {
	current, err := s.Children.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.QRCodeID = current.QRCodeID
	c.Guardian.AccountID = current.Guardian.AccountID
	if err := s.Children.Save(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s RegistryService) DeleteChildren(ctx context.Context, actor string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.Children.Delete(ctx, ids); err != nil {
		return err
	}
	s.logActivity(ctx, actor, "Children", fmt.Sprintf("%d child record(s) deleted", len(ids)))
	return nil
}

func (s RegistryService) AddStaff(ctx context.Context, actor string, m domain.Staff) (*domain.Staff, error) {
	m.QRCodeID = uuid.NewString()
	m.AccountID = ""
	created, err := s.Staff.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.logActivity(ctx, actor, "Staff", fmt.Sprintf("%s added", created.Name))
	return created, nil
}

func (s RegistryService) UpdateStaff(ctx context.Context, id string, m domain.Staff) (*domain.Staff, error) {
	current, err := s.Staff.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.ID = id
	m.QRCodeID = current.QRCodeID
	m.AccountID = current.AccountID
	if err := s.Staff.Save(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s RegistryService) DeleteStaff(ctx context.Context, actor string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.Staff.Delete(ctx, ids); err != nil {
		return err
	}
	s.logActivity(ctx, actor, "Staff", fmt.Sprintf("%d staff record(s) deleted", len(ids)))
	return nil
}

func (s RegistryService) DeleteInvoices(ctx context.Context, actor string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.Invoices.Delete(ctx, ids); err != nil {
		return err
	}
	s.logActivity(ctx, actor, "Invoices", fmt.Sprintf("%d invoice(s) deleted", len(ids)))
	return nil
}

// ManualCheckIn records a check-in at the current time for date (today when empty).
// It refuses when the subject already has a record for that date.
func (s RegistryService) ManualCheckIn(ctx context.Context, subject SubjectKind, subjectID, date string) (any, error) {
	if date == "" {
		date = s.Clock.Today()
	} else if _, err := domain.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: date: %v", ErrInvalidRecord, err)
	}
	now := domain.TimeOfDayOf(s.Clock.current())

	switch subject {
	case SubjectChild:
		child, err := s.Children.Get(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		records, err := s.Attendance.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range records {
			if a.ChildID == subjectID && a.Date == date {
				return nil, fmt.Errorf("%w: %s on %s", ErrAlreadyChecked, child.Name, date)
			}
		}
		return s.Attendance.Create(ctx, domain.AttendanceRecord{
			ChildID:   child.ID,
			ChildName: child.Name,
			Date:      date,
			CheckIn:   &now,
			Status:    domain.AttendancePresent,
		})
	case SubjectStaff:
		member, err := s.Staff.Get(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		records, err := s.StaffAttendance.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range records {
			if a.StaffID == subjectID && a.Date == date {
				return nil, fmt.Errorf("%w: %s on %s", ErrAlreadyChecked, member.Name, date)
			}
		}
		return s.StaffAttendance.Create(ctx, domain.StaffAttendanceRecord{
			StaffID:   member.ID,
			StaffName: member.Name,
			Date:      date,
			CheckIn:   &now,
			Status:    domain.AttendancePresent,
		})
	}
	return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidRecord, subject)
}

// ManualCheckOut stamps the current time as check-out on an open record.
func (s RegistryService) ManualCheckOut(ctx context.Context, subject SubjectKind, recordID string) error {
	now := domain.TimeOfDayOf(s.Clock.current())
	switch subject {
	case SubjectChild:
		rec, err := s.Attendance.Get(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.CheckOut != nil {
			return fmt.Errorf("%w: already checked out", ErrAlreadyChecked)
		}
		return s.Attendance.SetCheckOut(ctx, recordID, now)
	case SubjectStaff:
		rec, err := s.StaffAttendance.Get(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.CheckOut != nil {
			return fmt.Errorf("%w: already checked out", ErrAlreadyChecked)
		}
		return s.StaffAttendance.SetCheckOut(ctx, recordID, now)
	}
	return fmt.Errorf("%w: unknown subject %q", ErrInvalidRecord, subject)
}

// AttendanceEdit carries the editable times of a record; nil clears the time.
type AttendanceEdit struct {
	CheckIn  *domain.TimeOfDay
	CheckOut *domain.TimeOfDay
}

func (e AttendanceEdit) validate() error {
	if e.CheckIn == nil && e.CheckOut != nil {
		return fmt.Errorf("%w: check-out without check-in", ErrInvalidRecord)
	}
	if e.CheckIn != nil && e.CheckOut != nil && e.CheckOut.Before(*e.CheckIn) {
		return fmt.Errorf("%w: check-out before check-in", ErrInvalidRecord)
	}
	return nil
}

// statusFor derives the status from the check-in time: present iff it is set.
func statusFor(checkIn *domain.TimeOfDay) domain.AttendanceStatus {
	if checkIn != nil {
		return domain.AttendancePresent
	}
	return domain.AttendanceAbsent
}

func (s RegistryService) EditAttendance(ctx context.Context, subject SubjectKind, recordID string, e AttendanceEdit) (any, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	switch subject {
	case SubjectChild:
		rec, err := s.Attendance.Get(ctx, recordID)
		if err != nil {
			return nil, err
		}
		rec.CheckIn, rec.CheckOut, rec.Status = e.CheckIn, e.CheckOut, statusFor(e.CheckIn)
		if err := s.Attendance.Save(ctx, *rec); err != nil {
			return nil, err
		}
		return rec, nil
	case SubjectStaff:
		rec, err := s.StaffAttendance.Get(ctx, recordID)
		if err != nil {
			return nil, err
		}
		rec.CheckIn, rec.CheckOut, rec.Status = e.CheckIn, e.CheckOut, statusFor(e.CheckIn)
		if err := s.StaffAttendance.Save(ctx, *rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidRecord, subject)
}

func (s RegistryService) DeleteAttendance(ctx context.Context, subject SubjectKind, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	switch subject {
	case SubjectChild:
		return s.Attendance.Delete(ctx, ids)
	case SubjectStaff:
		return s.StaffAttendance.Delete(ctx, ids)
	}
	return fmt.Errorf("%w: unknown subject %q", ErrInvalidRecord, subject)
}

func (s RegistryService) logActivity(ctx context.Context, actor, title, message string) {
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		Title:   title,
		Message: message,
		Actor:   actor,
		Type:    domain.LogInfo,
	}); err != nil {
		s.Logger.Warn("failed to write activity log", "err", err)
	}
}
