package repository

import (
	"context"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

// UserRepository reads the role profiles keyed by auth account id.
type UserRepository struct {
	Store ports.Store
}

func UserPath(accountID string) string { return db.JoinPath(domain.PathUsers, accountID) }

func (r UserRepository) Get(ctx context.Context, accountID string) (*domain.UserProfile, error) {
	return getOne[domain.UserProfile](ctx, r.Store, UserPath(accountID))
}

func (r UserRepository) Save(ctx context.Context, accountID string, p domain.UserProfile) error {
	return r.Store.Set(ctx, UserPath(accountID), p)
}
