// Command crew-schedule materialises crew shifts for every cycle-enabled
// machine once and exits. It is meant to be run by an external cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/config"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/cron"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/postgresql"
	crewService "github.com/cmlabs-hris/labor-roster-go/internal/service/crew"
	dayLockService "github.com/cmlabs-hris/labor-roster-go/internal/service/daylock"
	"github.com/cmlabs-hris/labor-roster-go/migrations"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	days := flag.Int("days", 14, "days ahead of today to generate")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	if *days < 0 {
		fmt.Println("-days must not be negative")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolSize())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db.Pool); err != nil {
		fmt.Println("Error applying migrations:", err)
		os.Exit(1)
	}

	publisher := events.NewNop()
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			fmt.Println("Error connecting to NATS:", err)
			os.Exit(1)
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	location, _ := cfg.Roster.Location()
	hour, minute, _ := cfg.Roster.ShiftStartClock()
	tx := postgresql.NewTransactor(db)
	machines := postgresql.NewMachineRepository(db)

	dayLocks := dayLockService.NewDayLockService(
		postgresql.NewDayLockRepository(db),
		postgresql.NewAssignmentRepository(db),
		tx,
		dayLockService.ShiftStart{Location: location, Hour: hour, Minute: minute},
		metrics.NewNop(),
		publisher,
	)
	crews := crewService.NewCrewService(
		postgresql.NewCrewRepository(db),
		postgresql.NewCrewAssignmentRepository(db),
		machines,
		postgresql.NewEmployeeRepository(db),
		dayLocks,
		tx,
		metrics.NewNop(),
		publisher,
	)

	// today in the roster's zone, not the host's
	now := func() time.Time { return time.Now().In(location) }

	scheduler := cron.NewScheduler()
	scheduler.AddJob("crew-schedule-horizon", time.Hour, cron.CrewScheduleJob(machines, crews, *days, now))
	if err := scheduler.RunOnce(ctx); err != nil {
		fmt.Println("Crew schedule failed:", err)
		os.Exit(1)
	}
}
