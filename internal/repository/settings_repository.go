package repository

import (
	"context"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

type SettingsRepository struct {
	Store ports.Store
}

// Get returns ErrNotFound when the nursery settings were never saved.
func (r SettingsRepository) Get(ctx context.Context) (*domain.NurserySettings, error) {
	return getOne[domain.NurserySettings](ctx, r.Store, domain.PathSettings)
}

func (r SettingsRepository) Save(ctx context.Context, s domain.NurserySettings) error {
	return r.Store.Set(ctx, domain.PathSettings, s)
}
