package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
	"funnybanny-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testEnv wires services over an in-memory store with a fixed clock.
type testEnv struct {
	store    ports.Store
	clock    Clock
	children repository.ChildRepository
	staff    repository.StaffRepository
	invoices repository.InvoiceRepository
	att      repository.AttendanceRepository
	staffAtt repository.StaffAttendanceRepository
	settings SettingsService
	activity repository.ActivityLogRepository
	users    repository.UserRepository
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, db.NewMemory(), now)
}

func newTestEnvWithStore(t *testing.T, store ports.Store, now time.Time) *testEnv {
	t.Helper()
	return &testEnv{
		store:    store,
		clock:    Clock{Now: func() time.Time { return now }, Location: time.UTC},
		children: repository.ChildRepository{Store: store},
		staff:    repository.StaffRepository{Store: store},
		invoices: repository.InvoiceRepository{Store: store},
		att:      repository.AttendanceRepository{Store: store},
		staffAtt: repository.StaffAttendanceRepository{Store: store},
		settings: SettingsService{Repo: repository.SettingsRepository{Store: store}, Logger: testLogger},
		activity: repository.ActivityLogRepository{Store: store},
		users:    repository.UserRepository{Store: store},
	}
}

func (e *testEnv) snapshots() SnapshotService {
	return SnapshotService{
		Store:           e.store,
		Children:        e.children,
		Staff:           e.staff,
		Invoices:        e.invoices,
		Attendance:      e.att,
		StaffAttendance: e.staffAtt,
		Settings:        e.settings,
		Clock:           e.clock,
		Logger:          testLogger,
	}
}

func (e *testEnv) addChild(t *testing.T, c domain.Child) domain.Child {
	t.Helper()
	created, err := e.children.Create(context.Background(), c)
	require.NoError(t, err)
	return *created
}

func (e *testEnv) addStaff(t *testing.T, s domain.Staff) domain.Staff {
	t.Helper()
	created, err := e.staff.Create(context.Background(), s)
	require.NoError(t, err)
	return *created
}

func (e *testEnv) addInvoice(t *testing.T, inv domain.Invoice) domain.Invoice {
	t.Helper()
	created, err := e.invoices.Create(context.Background(), inv)
	require.NoError(t, err)
	return *created
}

// failingStore reads through to a Memory store and fails every write.
type failingStore struct {
	*db.Memory
	err error
}

func (f failingStore) Set(ctx context.Context, path string, value any) error {
	return f.err
}

func (f failingStore) Update(ctx context.Context, updates map[string]any) error {
	return f.err
}

// seededMemory returns a store holding default settings plus whatever seed writes.
func seededMemory(t *testing.T, seed func(*testEnv)) *db.Memory {
	t.Helper()
	mem := db.NewMemory()
	env := newTestEnvWithStore(t, mem, at(9, 0))
	_, err := env.settings.Get(context.Background())
	require.NoError(t, err)
	if seed != nil {
		seed(env)
	}
	return mem
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func tod(hour, minute int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(hour, minute)
	return &t
}
