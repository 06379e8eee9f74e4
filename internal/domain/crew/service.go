package crew

import (
	"context"
	"time"
)

type CrewService interface {
	CreateCrew(ctx context.Context, req CreateCrewRequest) (CrewResponse, error)
	UpdateMembers(ctx context.Context, req UpdateMembersRequest) error
	ListCrews(ctx context.Context, machineID int64) ([]CrewResponse, error)

	// Rotation resolves every active crew of a machine for a date.
	Rotation(ctx context.Context, machineID int64, date time.Time) (RotationResponse, error)
	GenerateSchedule(ctx context.Context, req GenerateScheduleRequest) (GenerateScheduleResponse, error)
	OverrideShift(ctx context.Context, req OverrideShiftRequest) (CrewShiftResponse, error)
}
