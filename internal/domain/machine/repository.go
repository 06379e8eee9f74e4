package machine

import (
	"context"
	"time"
)

type MachineRepository interface {
	GetByID(ctx context.Context, id int64) (Machine, error)
	// ListActiveForDate returns the machines running in the environment on the date.
	ListActiveForDate(ctx context.Context, environment string, date time.Time) ([]Machine, error)
	// ListCycleEnabled returns active machines that run the crew cycle.
	ListCycleEnabled(ctx context.Context) ([]Machine, error)
	Save(ctx context.Context, m Machine) (Machine, error)
}
