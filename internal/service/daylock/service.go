package daylock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

// ShiftStart is the local wall-clock time of a day's first shift. Once it has
// passed, the day is implicitly locked for non-admin callers.
type ShiftStart struct {
	Location *time.Location
	Hour     int
	Minute   int
}

// DefaultShiftStart is 06:00 local time.
var DefaultShiftStart = ShiftStart{Location: time.Local, Hour: 6}

type Option func(*dayLockServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *dayLockServiceImpl) {
		s.now = now
	}
}

type dayLockServiceImpl struct {
	locks       daylock.DayLockRepository
	assignments assignment.AssignmentRepository
	tx          database.Transactor
	shiftStart  ShiftStart
	metrics     metrics.Recorder
	events      events.Publisher
	now         func() time.Time
}

func NewDayLockService(
	locks daylock.DayLockRepository,
	assignments assignment.AssignmentRepository,
	tx database.Transactor,
	shiftStart ShiftStart,
	rec metrics.Recorder,
	pub events.Publisher,
	opts ...Option,
) daylock.DayLockService {
	if shiftStart.Location == nil {
		shiftStart.Location = time.Local
	}
	s := &dayLockServiceImpl{
		locks:       locks,
		assignments: assignments,
		tx:          tx,
		shiftStart:  shiftStart,
		metrics:     rec,
		events:      pub,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock implements daylock.DayLockService.
func (s *dayLockServiceImpl) Lock(ctx context.Context, req daylock.LockDayRequest) (daylock.DayLockResponse, error) {
	if err := req.Validate(); err != nil {
		return daylock.DayLockResponse{}, err
	}
	if !req.Actor.Admin() && !user.HasPermission(req.Actor.Role, user.PermissionRosterLock) {
		return daylock.DayLockResponse{}, daylock.ErrLockPermission
	}

	date, err := dates.Parse(req.Date)
	if err != nil {
		return daylock.DayLockResponse{}, err
	}

	started := s.now()
	var (
		lock    daylock.DayLock
		created bool
	)
	err = s.tx.WithinTx(ctx, []string{database.DayKey(date, req.Environment)}, func(ctx context.Context) error {
		existing, err := s.locks.Get(ctx, date, req.Environment)
		if err == nil {
			lock = existing
			return nil
		}
		if !errors.Is(err, daylock.ErrLockNotFound) {
			return fmt.Errorf("failed to read day lock: %w", err)
		}

		count, err := s.assignments.CountByDate(ctx, date, req.Environment)
		if err != nil {
			return fmt.Errorf("failed to count assignments: %w", err)
		}
		if count == 0 {
			return daylock.ErrNothingToLock
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate lock id: %w", err)
		}
		lock, err = s.locks.Create(ctx, daylock.DayLock{
			ID:          id.String(),
			Date:        date,
			Environment: req.Environment,
			LockedAt:    s.now().UTC(),
			LockedBy:    req.Actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create day lock: %w", err)
		}
		created = lock.ID == id.String()

		if _, err := s.assignments.MarkLocked(ctx, date, req.Environment); err != nil {
			return fmt.Errorf("failed to mark assignments locked: %w", err)
		}
		return nil
	})
	if err != nil {
		return daylock.DayLockResponse{}, err
	}

	s.metrics.RecordDayLock(req.Environment, created)
	s.metrics.ObserveOperation("lock_day", s.now().Sub(started).Seconds())
	if created {
		slog.Info("day locked", "date", req.Date, "environment", req.Environment, "locked_by", req.Actor.UserID)
		events.Emit(ctx, s.events, events.Event{
			Type:        events.TypeDayLocked,
			Environment: req.Environment,
			Date:        req.Date,
			Actor:       req.Actor.UserID,
			Payload:     daylock.ToResponse(lock),
		})
	}

	return daylock.ToResponse(lock), nil
}

// Status implements daylock.DayLockService.
// A failed lock lookup is reported as Unknown, which counts as locked.
func (s *dayLockServiceImpl) Status(ctx context.Context, date time.Time, environment string) (daylock.Status, error) {
	date = dates.Normalize(date)
	status := daylock.Status{
		Date:        date,
		Environment: environment,
		Implicit:    s.shiftStarted(date),
	}

	lock, err := s.locks.Get(ctx, date, environment)
	switch {
	case err == nil:
		status.Explicit = &lock
	case errors.Is(err, daylock.ErrLockNotFound):
	default:
		slog.Error("day lock lookup failed, treating day as locked",
			"date", dates.Format(date), "environment", environment, "error", err)
		status.Unknown = true
	}

	return status, nil
}

// IsLocked implements daylock.DayLockService.
func (s *dayLockServiceImpl) IsLocked(ctx context.Context, date time.Time, environment string) (bool, error) {
	status, err := s.Status(ctx, date, environment)
	if err != nil {
		return true, err
	}
	return status.Locked(), nil
}

// CheckWritable implements daylock.DayLockService.
func (s *dayLockServiceImpl) CheckWritable(ctx context.Context, date time.Time, environment string, actor user.Actor) error {
	if actor.Admin() {
		return nil
	}
	locked, err := s.IsLocked(ctx, date, environment)
	if err != nil || locked {
		return daylock.ErrDayLocked
	}
	return nil
}

func (s *dayLockServiceImpl) shiftStarted(date time.Time) bool {
	start := dates.At(date, s.shiftStart.Hour, s.shiftStart.Minute, s.shiftStart.Location)
	return !s.now().Before(start)
}
