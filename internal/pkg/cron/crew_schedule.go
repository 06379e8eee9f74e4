package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
)

// SchedulerActor is the identity crew generation runs under.
var SchedulerActor = user.Actor{UserID: "system:crew-scheduler", Role: user.RoleSupervisor}

// CrewScheduleJob materialises crew shifts from today through horizonDays
// ahead for every cycle-enabled machine. The crew service leaves overrides
// untouched and skips days already locked for SchedulerActor.
func CrewScheduleJob(machines machine.MachineRepository, crews crew.CrewService, horizonDays int, now func() time.Time) func(ctx context.Context) error {
	if now == nil {
		now = time.Now
	}
	if horizonDays < 0 {
		horizonDays = 0
	}
	return func(ctx context.Context) error {
		list, err := machines.ListCycleEnabled(ctx)
		if err != nil {
			return fmt.Errorf("list cycle machines: %w", err)
		}

		from := dates.Normalize(now())
		to := from.AddDate(0, 0, horizonDays)
		if horizonDays >= crew.MaxScheduleDays {
			to = from.AddDate(0, 0, crew.MaxScheduleDays-1)
		}

		var errs []error
		for _, m := range list {
			resp, err := crews.GenerateSchedule(ctx, crew.GenerateScheduleRequest{
				MachineID: m.ID,
				From:      dates.Format(from),
				To:        dates.Format(to),
				Actor:     SchedulerActor,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("machine %d: %w", m.ID, err))
				continue
			}
			slog.Debug("crew horizon generated", "machine_id", m.ID, "generated", resp.Generated)
		}
		return errors.Join(errs...)
	}
}
