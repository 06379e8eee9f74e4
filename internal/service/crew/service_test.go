package crew

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/memory"
	daylockservice "github.com/cmlabs-hris/labor-roster-go/internal/service/daylock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	supervisor = user.Actor{UserID: "sup-1", Role: user.RoleSupervisor}
	planner    = user.Actor{UserID: "plan-1", Role: user.RolePlanner}
)

// newCrewFixture seeds a cycle machine (id 1, start 2024-01-01, crew size 3),
// a machine without a cycle (id 2) and employees 1-10.
func newCrewFixture(t *testing.T) (*memory.Store, crew.CrewService, *events.MemoryPublisher) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	pub := events.NewMemory()

	start := dates.MustParse("2024-01-01")
	_, err := store.Machines().Save(ctx, machine.Machine{
		ID: 1, Name: "Extruder", Environment: "production", Status: machine.StatusActive,
		OperatorsPerShift: 1, DayShiftActive: true, NightShiftActive: true,
		ShiftCycleEnabled: true, CycleStartDate: &start, CrewSize: 3,
	})
	require.NoError(t, err)
	_, err = store.Machines().Save(ctx, machine.Machine{
		ID: 2, Name: "Wrapper", Environment: "packaging", Status: machine.StatusActive,
		OperatorsPerShift: 1, DayShiftActive: true,
	})
	require.NoError(t, err)
	for id := int64(1); id <= 10; id++ {
		_, err := store.Employees().Save(ctx, employee.Employee{ID: id, Name: "Worker", Role: employee.RoleOperator, IsActive: id != 10})
		require.NoError(t, err)
	}

	locks := daylockservice.NewDayLockService(store.DayLocks(), store.Assignments(), store.Transactor(),
		daylockservice.ShiftStart{Location: time.UTC, Hour: 6}, metrics.NewNop(), pub,
		daylockservice.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))

	svc := NewCrewService(store.Crews(), store.CrewAssignments(), store.Machines(), store.Employees(),
		locks, store.Transactor(), metrics.NewNop(), pub)
	return store, svc, pub
}

func createCrews(t *testing.T, svc crew.CrewService) {
	t.Helper()
	members := map[string]crew.Members{"A": {1, 2}, "B": {3, 4}, "C": {5, 6}}
	for _, letter := range crew.LetterValues {
		_, err := svc.CreateCrew(context.Background(), crew.CreateCrewRequest{
			MachineID: 1, Letter: letter, Members: members[letter], Actor: supervisor,
		})
		require.NoError(t, err)
	}
}

func TestCreateCrew_DefaultOffsets(t *testing.T) {
	_, svc, _ := newCrewFixture(t)
	createCrews(t, svc)

	crews, err := svc.ListCrews(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, crews, 3)
	assert.Equal(t, 0, crews[0].CycleOffset)
	assert.Equal(t, 2, crews[1].CycleOffset)
	assert.Equal(t, 4, crews[2].CycleOffset)
	assert.Equal(t, crew.Members{3, 4}, crews[1].Members)
}

func TestCreateCrew_Rejections(t *testing.T) {
	_, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)

	_, err := svc.CreateCrew(ctx, crew.CreateCrewRequest{MachineID: 1, Letter: "a", Members: crew.Members{7}, Actor: supervisor})
	assert.ErrorIs(t, err, crew.ErrCrewLetterExists)

	_, err = svc.CreateCrew(ctx, crew.CreateCrewRequest{MachineID: 2, Letter: "A", Members: crew.Members{7, 8, 9, 1}, Actor: supervisor})
	assert.NoError(t, err, "machines without a crew size accept any crew")

	_, err = svc.CreateCrew(ctx, crew.CreateCrewRequest{MachineID: 2, Letter: "B", Members: crew.Members{10}, Actor: supervisor})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = svc.CreateCrew(ctx, crew.CreateCrewRequest{MachineID: 2, Letter: "C", Members: crew.Members{7}, Actor: planner})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.CreateCrew(ctx, crew.CreateCrewRequest{MachineID: 99, Letter: "C", Members: crew.Members{7}, Actor: supervisor})
	assert.ErrorIs(t, err, machine.ErrMachineNotFound)
}

func TestUpdateMembers_CrewSize(t *testing.T) {
	store, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)
	crews, err := store.Crews().ListByMachine(ctx, 1)
	require.NoError(t, err)

	err = svc.UpdateMembers(ctx, crew.UpdateMembersRequest{CrewID: crews[0].ID, Members: crew.Members{1, 2, 7, 8}, Actor: supervisor})
	assert.ErrorIs(t, err, crew.ErrCrewTooLarge)

	require.NoError(t, svc.UpdateMembers(ctx, crew.UpdateMembersRequest{CrewID: crews[0].ID, Members: crew.Members{7, 8}, Actor: supervisor}))
	got, err := store.Crews().GetByID(ctx, crews[0].ID)
	require.NoError(t, err)
	assert.Equal(t, crew.Members{7, 8}, got.Members)
}

func TestRotation(t *testing.T) {
	_, svc, _ := newCrewFixture(t)
	createCrews(t, svc)

	rot, err := svc.Rotation(context.Background(), 1, dates.MustParse("2024-01-03"))

	require.NoError(t, err)
	require.Len(t, rot.Crews, 3)
	// day index 2, 4 and 0 for offsets 0, 2 and 4
	assert.Equal(t, "night", rot.Crews[0].ShiftType)
	assert.Equal(t, "rest", rot.Crews[1].ShiftType)
	assert.Equal(t, "day", rot.Crews[2].ShiftType)
	assert.Equal(t, "2024-01-01", rot.CycleStartDate)
}

func TestRotation_CycleDisabled(t *testing.T) {
	_, svc, _ := newCrewFixture(t)

	_, err := svc.Rotation(context.Background(), 2, dates.MustParse("2024-01-03"))

	assert.ErrorIs(t, err, machine.ErrCycleDisabled)
}

func TestOverrideShift_WinsOverCycle(t *testing.T) {
	store, svc, pub := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)
	crews, err := store.Crews().ListByMachine(ctx, 1)
	require.NoError(t, err)

	got, err := svc.OverrideShift(ctx, crew.OverrideShiftRequest{
		MachineID: 1, CrewID: crews[1].ID, Date: "2024-01-03", ShiftType: "day", Reason: "line trial", Actor: supervisor,
	})
	require.NoError(t, err)
	assert.True(t, got.Override)

	rot, err := svc.Rotation(ctx, 1, dates.MustParse("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, "day", rot.Crews[1].ShiftType)
	assert.True(t, rot.Crews[1].Override)

	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.TypeCrewOverridden, pub.Events()[0].Type)
}

func TestOverrideShift_LockedDay(t *testing.T) {
	store, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)
	crews, err := store.Crews().ListByMachine(ctx, 1)
	require.NoError(t, err)

	// the fixture clock sits at midnight on the cycle start, so earlier days are past their shift start
	_, err = svc.OverrideShift(ctx, crew.OverrideShiftRequest{
		MachineID: 1, CrewID: crews[0].ID, Date: "2023-12-31", ShiftType: "rest", Reason: "late", Actor: supervisor,
	})
	assert.ErrorIs(t, err, daylock.ErrDayLocked)

	_, err = svc.OverrideShift(ctx, crew.OverrideShiftRequest{
		MachineID: 2, CrewID: crews[0].ID, Date: "2024-01-05", ShiftType: "rest", Reason: "wrong machine", Actor: supervisor,
	})
	assert.ErrorIs(t, err, crew.ErrCrewNotFound)
}

func TestGenerateSchedule(t *testing.T) {
	store, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)
	crews, err := store.Crews().ListByMachine(ctx, 1)
	require.NoError(t, err)

	_, err = svc.OverrideShift(ctx, crew.OverrideShiftRequest{
		MachineID: 1, CrewID: crews[0].ID, Date: "2024-01-02", ShiftType: "rest", Reason: "maintenance", Actor: supervisor,
	})
	require.NoError(t, err)

	resp, err := svc.GenerateSchedule(ctx, crew.GenerateScheduleRequest{MachineID: 1, From: "2023-12-31", To: "2024-01-06", Actor: supervisor})

	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-31"}, resp.Skipped)
	assert.Equal(t, 6*3-1, resp.Generated)

	stored, err := store.CrewAssignments().ListByMachine(ctx, 1, dates.MustParse("2024-01-01"), dates.MustParse("2024-01-06"))
	require.NoError(t, err)
	assert.Len(t, stored, 18)
	for _, ca := range stored {
		if ca.CrewID == crews[0].ID && dates.Format(ca.Date) == "2024-01-02" {
			assert.True(t, ca.IsOverride)
			assert.Equal(t, "rest", string(ca.ShiftType))
		}
	}
}

func TestGenerateSchedule_RangeValidation(t *testing.T) {
	_, svc, _ := newCrewFixture(t)

	_, err := svc.GenerateSchedule(context.Background(), crew.GenerateScheduleRequest{MachineID: 1, From: "2024-02-01", To: "2024-01-01", Actor: supervisor})

	assert.Error(t, err)
}

func TestGenerateSchedule_SkipsLockedDays(t *testing.T) {
	store, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)

	_, err := store.DayLocks().Create(ctx, daylock.DayLock{
		ID: "lock-1", Date: dates.MustParse("2024-01-03"), Environment: "production",
		LockedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), LockedBy: "sup-1",
	})
	require.NoError(t, err)

	resp, err := svc.GenerateSchedule(ctx, crew.GenerateScheduleRequest{MachineID: 1, From: "2024-01-01", To: "2024-01-04", Actor: supervisor})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03"}, resp.Skipped)
	assert.Equal(t, 3*3, resp.Generated)

	locked, err := store.CrewAssignments().ListByMachine(ctx, 1, dates.MustParse("2024-01-03"), dates.MustParse("2024-01-03"))
	require.NoError(t, err)
	assert.Empty(t, locked)

	// admins write through locks
	resp, err = svc.GenerateSchedule(ctx, crew.GenerateScheduleRequest{
		MachineID: 1, From: "2024-01-03", To: "2024-01-03",
		Actor: user.Actor{UserID: "admin-1", Role: user.RoleAdmin, IsAdmin: true},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, 3, resp.Generated)
}

func TestOverrideShift_ExplicitLock(t *testing.T) {
	store, svc, _ := newCrewFixture(t)
	ctx := context.Background()
	createCrews(t, svc)
	crews, err := store.Crews().ListByMachine(ctx, 1)
	require.NoError(t, err)

	_, err = store.DayLocks().Create(ctx, daylock.DayLock{
		ID: "lock-1", Date: dates.MustParse("2024-01-05"), Environment: "production",
		LockedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), LockedBy: "sup-1",
	})
	require.NoError(t, err)

	_, err = svc.OverrideShift(ctx, crew.OverrideShiftRequest{
		MachineID: 1, CrewID: crews[0].ID, Date: "2024-01-05", ShiftType: "rest", Reason: "audit", Actor: supervisor,
	})
	assert.ErrorIs(t, err, daylock.ErrDayLocked)

	stored, err := store.CrewAssignments().ListByMachine(ctx, 1, dates.MustParse("2024-01-05"), dates.MustParse("2024-01-05"))
	require.NoError(t, err)
	assert.Empty(t, stored)
}
