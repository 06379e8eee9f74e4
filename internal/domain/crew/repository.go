package crew

import (
	"context"
	"time"
)

type CrewRepository interface {
	Create(ctx context.Context, c Crew) (Crew, error)
	GetByID(ctx context.Context, id int64) (Crew, error)
	ListByMachine(ctx context.Context, machineID int64) ([]Crew, error)
	UpdateMembers(ctx context.Context, id int64, members Members) error
}

type CrewAssignmentRepository interface {
	// Upsert writes the crew shift for a date. Generated rows never replace an override.
	Upsert(ctx context.Context, ca CrewAssignment) (CrewAssignment, error)
	ListByMachine(ctx context.Context, machineID int64, from, to time.Time) ([]CrewAssignment, error)
}
