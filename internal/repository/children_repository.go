package repository

import (
	"context"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

type ChildRepository struct {
	Store ports.Store
}

func ChildPath(id string) string { return db.JoinPath(domain.PathChildren, id) }

// GuardianAccountPath addresses the guardian's linked account id of a child.
func GuardianAccountPath(childID string) string {
	return db.JoinPath(domain.PathChildren, childID, "guardian", "accountId")
}

func (r ChildRepository) List(ctx context.Context) ([]domain.Child, error) {
	return listCollection(ctx, r.Store, domain.PathChildren, func(c *domain.Child, id string) { c.ID = id })
}

func (r ChildRepository) Get(ctx context.Context, id string) (*domain.Child, error) {
	c, err := getOne[domain.Child](ctx, r.Store, ChildPath(id))
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Create stores c under a new key and returns it with its id set.
func (r ChildRepository) Create(ctx context.Context, c domain.Child) (*domain.Child, error) {
	id, err := r.Store.Push(ctx, domain.PathChildren)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, ChildPath(id), c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (r ChildRepository) Save(ctx context.Context, c domain.Child) error {
	return r.Store.Set(ctx, ChildPath(c.ID), c)
}

func (r ChildRepository) Delete(ctx context.Context, ids []string) error {
	return r.Store.Update(ctx, DeletePaths(domain.PathChildren, ids))
}
