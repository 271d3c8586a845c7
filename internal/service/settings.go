package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
)

var ErrInvalidSettings = errors.New("invalid settings")

type SettingsService struct {
	Repo   repository.SettingsRepository
	Logger *slog.Logger
}

// Get returns the nursery settings, writing the defaults first if none were ever saved.
func (s SettingsService) Get(ctx context.Context) (domain.NurserySettings, error) {
	current, err := s.Repo.Get(ctx)
	if err == nil {
		if current.NextDueDateStrategy == "" {
			current.NextDueDateStrategy = domain.FirstDayNextMonth
		}
		return *current, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.NurserySettings{}, err
	}
	defaults := domain.DefaultSettings()
	if err := s.Repo.Save(ctx, defaults); err != nil {
		return domain.NurserySettings{}, fmt.Errorf("persist default settings: %w", err)
	}
	s.Logger.Info("nursery settings initialised with defaults")
	return defaults, nil
}

func (s SettingsService) Save(ctx context.Context, in domain.NurserySettings) (domain.NurserySettings, error) {
	if err := ValidateSettings(in); err != nil {
		return domain.NurserySettings{}, err
	}
	if err := s.Repo.Save(ctx, in); err != nil {
		return domain.NurserySettings{}, err
	}
	return in, nil
}

// ValidateSettings requires ordered, disjoint check-in and check-out windows.
func ValidateSettings(in domain.NurserySettings) error {
	if !in.NextDueDateStrategy.Valid() {
		return fmt.Errorf("%w: unknown due date strategy %q", ErrInvalidSettings, in.NextDueDateStrategy)
	}
	if in.CheckInStartTime.After(in.CheckInEndTime) {
		return fmt.Errorf("%w: check-in window starts after it ends", ErrInvalidSettings)
	}
	if in.CheckOutStartTime.After(in.CheckOutEndTime) {
		return fmt.Errorf("%w: check-out window starts after it ends", ErrInvalidSettings)
	}
	if !in.CheckInEndTime.Before(in.CheckOutStartTime) && !in.CheckOutEndTime.Before(in.CheckInStartTime) {
		return fmt.Errorf("%w: check-in and check-out windows overlap", ErrInvalidSettings)
	}
	return nil
}
