package assignment

import (
	"context"
	"time"
)

type AssignmentRepository interface {
	// Upsert inserts the assignment or replaces the occupant of its slot.
	Upsert(ctx context.Context, a Assignment) (Assignment, error)
	GetByID(ctx context.Context, id int64) (Assignment, error)
	GetBySlot(ctx context.Context, slot Slot) (Assignment, error)
	Delete(ctx context.Context, id int64) error
	// ListByDate lists a day's assignments, optionally for one environment.
	ListByDate(ctx context.Context, date time.Time, environment *string) ([]Assignment, error)
	ListByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]Assignment, error)
	CountByDate(ctx context.Context, date time.Time, environment string) (int, error)
	MarkLocked(ctx context.Context, date time.Time, environment string) (int64, error)
}
