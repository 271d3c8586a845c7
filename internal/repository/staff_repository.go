package repository

import (
	"context"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

type StaffRepository struct {
	Store ports.Store
}

func StaffPath(id string) string { return db.JoinPath(domain.PathStaff, id) }

func StaffAccountPath(staffID string) string {
	return db.JoinPath(domain.PathStaff, staffID, "accountId")
}

func (r StaffRepository) List(ctx context.Context) ([]domain.Staff, error) {
	return listCollection(ctx, r.Store, domain.PathStaff, func(s *domain.Staff, id string) { s.ID = id })
}

func (r StaffRepository) Get(ctx context.Context, id string) (*domain.Staff, error) {
	s, err := getOne[domain.Staff](ctx, r.Store, StaffPath(id))
	if err != nil {
		return nil, err
	}
	s.ID = id
	return s, nil
}

func (r StaffRepository) Create(ctx context.Context, s domain.Staff) (*domain.Staff, error) {
	id, err := r.Store.Push(ctx, domain.PathStaff)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, StaffPath(id), s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

func (r StaffRepository) Save(ctx context.Context, s domain.Staff) error {
	return r.Store.Set(ctx, StaffPath(s.ID), s)
}

func (r StaffRepository) Delete(ctx context.Context, ids []string) error {
	return r.Store.Update(ctx, DeletePaths(domain.PathStaff, ids))
}
