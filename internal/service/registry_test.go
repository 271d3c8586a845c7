package service

import (
	"context"
	"testing"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(env *testEnv) RegistryService {
	return RegistryService{
		Children:        env.children,
		Staff:           env.staff,
		Invoices:        env.invoices,
		Attendance:      env.att,
		StaffAttendance: env.staffAtt,
		Activity:        env.activity,
		Clock:           env.clock,
		Logger:          testLogger,
	}
}

func TestRegistryChildLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	reg := newRegistry(env)

	created, err := reg.AddChild(ctx, "admin", domain.Child{
		Name:     "Lina",
		Age:      4,
		QRCodeID: "chosen-by-client",
		Guardian: domain.Guardian{Name: "Mona", AccountID: "forged"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "chosen-by-client", created.QRCodeID)
	assert.Empty(t, created.Guardian.AccountID)

	require.NoError(t, env.store.Set(ctx, repository.GuardianAccountPath(created.ID), "uid-mona"))

	updated, err := reg.UpdateChild(ctx, created.ID, domain.Child{Name: "Lina B", Age: 5, QRCodeID: "other"})
	require.NoError(t, err)
	assert.Equal(t, created.QRCodeID, updated.QRCodeID)
	assert.Equal(t, "uid-mona", updated.Guardian.AccountID)

	stored, err := env.children.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lina B", stored.Name)
	assert.Equal(t, 5, stored.Age)

	require.NoError(t, reg.DeleteChildren(ctx, "admin", []string{created.ID, created.ID}))
	_, err = env.children.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = reg.UpdateChild(ctx, "nope", domain.Child{Name: "X"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	logs, err := env.activity.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestRegistryStaffKeepsBadge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	reg := newRegistry(env)

	a, err := reg.AddStaff(ctx, "admin", domain.Staff{Name: "Sara", Role: domain.StaffTeacher})
	require.NoError(t, err)
	b, err := reg.AddStaff(ctx, "admin", domain.Staff{Name: "Omar", Role: domain.StaffSupervisor})
	require.NoError(t, err)
	assert.NotEqual(t, a.QRCodeID, b.QRCodeID)

	updated, err := reg.UpdateStaff(ctx, a.ID, domain.Staff{Name: "Sara K", Role: domain.StaffAdmin, AccountID: "forged"})
	require.NoError(t, err)
	assert.Equal(t, a.QRCodeID, updated.QRCodeID)
	assert.Empty(t, updated.AccountID)
}

func TestRegistryManualAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 20))
	reg := newRegistry(env)
	child := env.addChild(t, domain.Child{Name: "Lina"})

	out, err := reg.ManualCheckIn(ctx, SubjectChild, child.ID, "")
	require.NoError(t, err)
	rec, ok := out.(*domain.AttendanceRecord)
	require.True(t, ok)
	assert.Equal(t, "2024-03-04", rec.Date)
	assert.Equal(t, "09:20", rec.CheckIn.String())
	assert.Equal(t, "Lina", rec.ChildName)

	_, err = reg.ManualCheckIn(ctx, SubjectChild, child.ID, "2024-03-04")
	assert.ErrorIs(t, err, ErrAlreadyChecked)

	_, err = reg.ManualCheckIn(ctx, SubjectChild, child.ID, "2024-03-01")
	require.NoError(t, err, "a different day is a different record")

	_, err = reg.ManualCheckIn(ctx, SubjectChild, child.ID, "03/04/2024")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = reg.ManualCheckIn(ctx, SubjectChild, "ghost", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, reg.ManualCheckOut(ctx, SubjectChild, rec.ID))
	assert.ErrorIs(t, reg.ManualCheckOut(ctx, SubjectChild, rec.ID), ErrAlreadyChecked)

	got, err := env.att.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, "09:20", got.CheckOut.String())
}

func TestRegistryStaffManualAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(7, 5))
	reg := newRegistry(env)
	member := env.addStaff(t, domain.Staff{Name: "Sara"})

	out, err := reg.ManualCheckIn(ctx, SubjectStaff, member.ID, "")
	require.NoError(t, err)
	rec := out.(*domain.StaffAttendanceRecord)
	assert.Equal(t, member.ID, rec.StaffID)

	_, err = reg.ManualCheckIn(ctx, SubjectStaff, member.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyChecked)

	_, err = reg.ManualCheckIn(ctx, "visitor", member.ID, "")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	require.NoError(t, reg.DeleteAttendance(ctx, SubjectStaff, []string{rec.ID}))
	all, err := env.staffAtt.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRegistryEditAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	reg := newRegistry(env)
	rec, err := env.att.Create(ctx, domain.AttendanceRecord{ChildID: "c1", ChildName: "Lina", Date: "2024-03-04", CheckIn: tod(8, 0), Status: domain.AttendancePresent})
	require.NoError(t, err)

	tests := []struct {
		name   string
		edit   AttendanceEdit
		err    error
		status domain.AttendanceStatus
	}{
		{name: "set both", edit: AttendanceEdit{CheckIn: tod(8, 15), CheckOut: tod(14, 0)}, status: domain.AttendancePresent},
		{name: "same minute", edit: AttendanceEdit{CheckIn: tod(8, 15), CheckOut: tod(8, 15)}, status: domain.AttendancePresent},
		{name: "clear both marks absent", edit: AttendanceEdit{}, status: domain.AttendanceAbsent},
		{name: "check-out alone", edit: AttendanceEdit{CheckOut: tod(14, 0)}, err: ErrInvalidRecord},
		{name: "check-out first", edit: AttendanceEdit{CheckIn: tod(14, 0), CheckOut: tod(8, 0)}, err: ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := reg.EditAttendance(ctx, SubjectChild, rec.ID, tt.edit)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			got := out.(*domain.AttendanceRecord)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.edit.CheckIn, got.CheckIn)

			stored, err := env.att.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
			assert.Equal(t, tt.edit.CheckOut, stored.CheckOut)
		})
	}

	_, err = reg.EditAttendance(ctx, SubjectChild, "missing", AttendanceEdit{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
