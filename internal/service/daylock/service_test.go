package daylock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	supervisor = user.Actor{UserID: "sup-1", Role: user.RoleSupervisor}
	planner    = user.Actor{UserID: "plan-1", Role: user.RolePlanner}
	admin      = user.Actor{UserID: "admin-1", Role: user.RoleAdmin, IsAdmin: true}
)

var frozenNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, locks daylock.DayLockRepository, store *memory.Store, pub events.Publisher, now func() time.Time) daylock.DayLockService {
	t.Helper()
	if locks == nil {
		locks = store.DayLocks()
	}
	return NewDayLockService(
		locks,
		store.Assignments(),
		store.Transactor(),
		ShiftStart{Location: time.UTC, Hour: 6},
		metrics.NewNop(),
		pub,
		WithClock(now),
	)
}

func seedAssignment(t *testing.T, store *memory.Store, date, environment string) assignment.Assignment {
	t.Helper()
	machineID := int64(1)
	a, err := store.Assignments().Upsert(context.Background(), assignment.Assignment{
		EmployeeID:  1,
		MachineID:   &machineID,
		Environment: environment,
		Date:        dates.MustParse(date),
		ShiftType:   shift.Day,
		Role:        assignment.SlotOperator,
		Position:    1,
	})
	require.NoError(t, err)
	return a
}

func fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLock_RequiresAssignments(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, nil, store, events.NewNop(), fixed(frozenNow))

	_, err := svc.Lock(context.Background(), daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: supervisor})

	assert.ErrorIs(t, err, daylock.ErrNothingToLock)
}

func TestLock_IdempotentAndMirrored(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := events.NewMemory()
	svc := newService(t, nil, store, pub, fixed(frozenNow))
	a := seedAssignment(t, store, "2024-02-01", "packaging")

	first, err := svc.Lock(ctx, daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: supervisor})
	require.NoError(t, err)
	second, err := svc.Lock(ctx, daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: admin})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "sup-1", second.LockedBy)
	assert.Len(t, pub.Events(), 1)

	got, err := store.Assignments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLocked)
}

func TestLock_Permission(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, nil, store, events.NewNop(), fixed(frozenNow))
	seedAssignment(t, store, "2024-02-01", "packaging")

	_, err := svc.Lock(context.Background(), daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: planner})

	assert.ErrorIs(t, err, daylock.ErrLockPermission)
}

func TestLock_Validation(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, nil, store, events.NewNop(), fixed(frozenNow))

	_, err := svc.Lock(context.Background(), daylock.LockDayRequest{Date: "01/02/2024", Environment: "Packaging", Actor: supervisor})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "environment")
}

func TestCheckWritable_ExplicitLock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, nil, store, events.NewNop(), fixed(frozenNow))
	seedAssignment(t, store, "2024-02-01", "packaging")
	date := dates.MustParse("2024-02-01")

	require.NoError(t, svc.CheckWritable(ctx, date, "packaging", planner))

	_, err := svc.Lock(ctx, daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: supervisor})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CheckWritable(ctx, date, "packaging", planner), daylock.ErrDayLocked)
	assert.NoError(t, svc.CheckWritable(ctx, date, "packaging", admin))
	assert.NoError(t, svc.CheckWritable(ctx, date, "production", planner))
}

func TestStatus_ImplicitLockAtShiftStart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	date := dates.MustParse("2024-02-01")

	before := newService(t, nil, store, events.NewNop(), fixed(time.Date(2024, 2, 1, 5, 59, 0, 0, time.UTC)))
	st, err := before.Status(ctx, date, "packaging")
	require.NoError(t, err)
	assert.False(t, st.Locked())

	at := newService(t, nil, store, events.NewNop(), fixed(time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)))
	st, err = at.Status(ctx, date, "packaging")
	require.NoError(t, err)
	assert.True(t, st.Implicit)
	assert.Nil(t, st.Explicit)
	assert.True(t, st.Locked())
}

func TestStatus_ShiftStartUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	store := memory.NewStore()
	// 23:30 UTC on Jan 31 is 06:30 on Feb 1 in Jakarta
	svc := NewDayLockService(store.DayLocks(), store.Assignments(), store.Transactor(),
		ShiftStart{Location: jakarta, Hour: 6}, metrics.NewNop(), events.NewNop(),
		WithClock(fixed(time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC))))

	locked, err := svc.IsLocked(context.Background(), dates.MustParse("2024-02-01"), "packaging")

	require.NoError(t, err)
	assert.True(t, locked)
}

type brokenLocks struct{}

func (brokenLocks) Get(_ context.Context, _ time.Time, _ string) (daylock.DayLock, error) {
	return daylock.DayLock{}, errors.New("connection refused")
}

func (brokenLocks) Create(_ context.Context, _ daylock.DayLock) (daylock.DayLock, error) {
	return daylock.DayLock{}, errors.New("connection refused")
}

func TestStatus_FailsClosed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, brokenLocks{}, store, events.NewNop(), fixed(frozenNow))
	date := dates.MustParse("2024-02-01")

	st, err := svc.Status(ctx, date, "packaging")
	require.NoError(t, err)
	assert.True(t, st.Unknown)

	locked, err := svc.IsLocked(ctx, date, "packaging")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.ErrorIs(t, svc.CheckWritable(ctx, date, "packaging", planner), daylock.ErrDayLocked)
}

func TestLock_Monotonic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, nil, store, events.NewNop(), fixed(frozenNow))
	a := seedAssignment(t, store, "2024-02-01", "packaging")
	date := dates.MustParse("2024-02-01")

	_, err := svc.Lock(ctx, daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: supervisor})
	require.NoError(t, err)

	// removing every assignment does not unlock the day
	require.NoError(t, store.Assignments().Delete(ctx, a.ID))
	_, err = svc.Lock(ctx, daylock.LockDayRequest{Date: "2024-02-01", Environment: "packaging", Actor: supervisor})
	require.NoError(t, err)

	locked, err := svc.IsLocked(ctx, date, "packaging")
	require.NoError(t, err)
	assert.True(t, locked)
}
