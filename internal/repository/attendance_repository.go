package repository

import (
	"context"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

// AttendanceRepository stores child attendance under "attendance".
type AttendanceRepository struct {
	Store ports.Store
}

func AttendancePath(id string) string { return db.JoinPath(domain.PathAttendance, id) }

func (r AttendanceRepository) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	return listCollection(ctx, r.Store, domain.PathAttendance, func(a *domain.AttendanceRecord, id string) { a.ID = id })
}

func (r AttendanceRepository) Get(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	a, err := getOne[domain.AttendanceRecord](ctx, r.Store, AttendancePath(id))
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (r AttendanceRepository) Create(ctx context.Context, a domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	id, err := r.Store.Push(ctx, domain.PathAttendance)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, AttendancePath(id), a); err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (r AttendanceRepository) Save(ctx context.Context, a domain.AttendanceRecord) error {
	return r.Store.Set(ctx, AttendancePath(a.ID), a)
}

func (r AttendanceRepository) SetCheckOut(ctx context.Context, id string, at domain.TimeOfDay) error {
	return r.Store.Set(ctx, db.JoinPath(domain.PathAttendance, id, "checkOut"), at)
}

func (r AttendanceRepository) Delete(ctx context.Context, ids []string) error {
	return r.Store.Update(ctx, DeletePaths(domain.PathAttendance, ids))
}

// StaffAttendanceRepository stores staff attendance under "staffAttendance".
type StaffAttendanceRepository struct {
	Store ports.Store
}

func StaffAttendancePath(id string) string { return db.JoinPath(domain.PathStaffAttendance, id) }

func (r StaffAttendanceRepository) List(ctx context.Context) ([]domain.StaffAttendanceRecord, error) {
	return listCollection(ctx, r.Store, domain.PathStaffAttendance, func(a *domain.StaffAttendanceRecord, id string) { a.ID = id })
}

func (r StaffAttendanceRepository) Get(ctx context.Context, id string) (*domain.StaffAttendanceRecord, error) {
	a, err := getOne[domain.StaffAttendanceRecord](ctx, r.Store, StaffAttendancePath(id))
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (r StaffAttendanceRepository) Create(ctx context.Context, a domain.StaffAttendanceRecord) (*domain.StaffAttendanceRecord, error) {
	id, err := r.Store.Push(ctx, domain.PathStaffAttendance)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, StaffAttendancePath(id), a); err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (r StaffAttendanceRepository) Save(ctx context.Context, a domain.StaffAttendanceRecord) error {
	return r.Store.Set(ctx, StaffAttendancePath(a.ID), a)
}

func (r StaffAttendanceRepository) SetCheckOut(ctx context.Context, id string, at domain.TimeOfDay) error {
	return r.Store.Set(ctx, db.JoinPath(domain.PathStaffAttendance, id, "checkOut"), at)
}

func (r StaffAttendanceRepository) Delete(ctx context.Context, ids []string) error {
	return r.Store.Update(ctx, DeletePaths(domain.PathStaffAttendance, ids))
}
