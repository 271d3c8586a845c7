package service

import (
	"context"
	"testing"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGetPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))

	_, err := env.settings.Repo.Get(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	stored, err := env.settings.Repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *stored)
}

func TestValidateSettings(t *testing.T) {
	valid := domain.DefaultSettings()
	tests := []struct {
		name   string
		mutate func(*domain.NurserySettings)
		ok     bool
	}{
		{name: "defaults", mutate: func(*domain.NurserySettings) {}, ok: true},
		{name: "single minute windows", mutate: func(s *domain.NurserySettings) {
			s.CheckInStartTime, s.CheckInEndTime = domain.NewTimeOfDay(8, 0), domain.NewTimeOfDay(8, 0)
		}, ok: true},
		{name: "check-out before check-in is allowed", mutate: func(s *domain.NurserySettings) {
			s.CheckOutStartTime, s.CheckOutEndTime = domain.NewTimeOfDay(5, 0), domain.NewTimeOfDay(6, 0)
		}, ok: true},
		{name: "reversed check-in", mutate: func(s *domain.NurserySettings) {
			s.CheckInStartTime, s.CheckInEndTime = domain.NewTimeOfDay(10, 0), domain.NewTimeOfDay(7, 0)
		}},
		{name: "reversed check-out", mutate: func(s *domain.NurserySettings) {
			s.CheckOutStartTime, s.CheckOutEndTime = domain.NewTimeOfDay(16, 0), domain.NewTimeOfDay(13, 0)
		}},
		{name: "touching windows overlap", mutate: func(s *domain.NurserySettings) {
			s.CheckOutStartTime = s.CheckInEndTime
		}},
		{name: "unknown strategy", mutate: func(s *domain.NurserySettings) {
			s.NextDueDateStrategy = "weekly"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := ValidateSettings(s)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestSettingsSave(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))

	in := domain.DefaultSettings()
	in.NextDueDateStrategy = domain.LastDayNextMonth
	in.CheckInEndTime = domain.NewTimeOfDay(9, 30)
	_, err := env.settings.Save(ctx, in)
	require.NoError(t, err)

	got, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	bad := in
	bad.CheckInStartTime = domain.NewTimeOfDay(11, 0)
	_, err = env.settings.Save(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidSettings)

	got, err = env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got, "rejected settings are not written")
}
