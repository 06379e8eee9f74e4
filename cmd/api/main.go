package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/config"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	appHTTP "github.com/cmlabs-hris/labor-roster-go/internal/handler/http"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/cron"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/seed"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/sse"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/memory"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/postgresql"
	assignmentService "github.com/cmlabs-hris/labor-roster-go/internal/service/assignment"
	crewService "github.com/cmlabs-hris/labor-roster-go/internal/service/crew"
	dayLockService "github.com/cmlabs-hris/labor-roster-go/internal/service/daylock"
	"github.com/cmlabs-hris/labor-roster-go/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "v1.0.0"

// repositories is the storage backend selected by APP_STORE.
type repositories struct {
	employees       employee.EmployeeRepository
	machines        machine.MachineRepository
	crews           crew.CrewRepository
	crewAssignments crew.CrewAssignmentRepository
	assignments     assignment.AssignmentRepository
	dayLocks        daylock.DayLockRepository
	tx              database.Transactor
	close           func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Println("Error opening store:", err)
		os.Exit(1)
	}
	defer repos.close()

	if cfg.App.SeedFile != "" {
		if err := seedFacility(ctx, cfg.App.SeedFile, repos); err != nil {
			fmt.Println("Error seeding facility:", err)
			os.Exit(1)
		}
	}

	location, _ := cfg.Roster.Location()
	hour, minute, _ := cfg.Roster.ShiftStartClock()

	var (
		recorder       metrics.Recorder = metrics.NewNop()
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheus(registry, cfg.Metrics.Namespace)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	hub := sse.NewHub()
	sinks := []events.Publisher{hub}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			fmt.Println("Error connecting to NATS:", err)
			os.Exit(1)
		}
		sinks = append(sinks, natsPublisher)
	}
	publisher := events.NewMulti(sinks...)
	defer publisher.Close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	dayLockSvc := dayLockService.NewDayLockService(
		repos.dayLocks,
		repos.assignments,
		repos.tx,
		dayLockService.ShiftStart{Location: location, Hour: hour, Minute: minute},
		recorder,
		publisher,
	)
	crewSvc := crewService.NewCrewService(
		repos.crews,
		repos.crewAssignments,
		repos.machines,
		repos.employees,
		dayLockSvc,
		repos.tx,
		recorder,
		publisher,
	)
	assignmentSvc := assignmentService.NewAssignmentService(
		repos.assignments,
		repos.employees,
		repos.machines,
		crewSvc,
		dayLockSvc,
		repos.tx,
		recorder,
		publisher,
		location,
	)

	// Off by default; deployments normally run cmd/crew-schedule from cron.
	if cfg.Roster.CrewHorizonDays > 0 {
		now := func() time.Time { return time.Now().In(location) }
		scheduler := cron.NewScheduler()
		scheduler.AddJob("crew-schedule-horizon", cfg.Roster.CrewScheduleInterval,
			cron.CrewScheduleJob(repos.machines, crewSvc, cfg.Roster.CrewHorizonDays, now))
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			Metrics:        metricsHandler,
		},
		JWTService,
		appHTTP.NewAssignmentHandler(assignmentSvc),
		appHTTP.NewDayLockHandler(dayLockSvc),
		appHTTP.NewCrewHandler(crewSvc),
		appHTTP.NewEventHandler(hub),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("server running", "addr", server.Addr, "store", cfg.App.Store, "timezone", location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Println("Server error:", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.App.Store == config.StoreMemory {
		store := memory.NewStore()
		return repositories{
			employees:       store.Employees(),
			machines:        store.Machines(),
			crews:           store.Crews(),
			crewAssignments: store.CrewAssignments(),
			assignments:     store.Assignments(),
			dayLocks:        store.DayLocks(),
			tx:              store.Transactor(),
			close:           func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolSize())
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	if err := migrations.Apply(ctx, db.Pool); err != nil {
		db.Close()
		return repositories{}, err
	}
	return repositories{
		employees:       postgresql.NewEmployeeRepository(db),
		machines:        postgresql.NewMachineRepository(db),
		crews:           postgresql.NewCrewRepository(db),
		crewAssignments: postgresql.NewCrewAssignmentRepository(db),
		assignments:     postgresql.NewAssignmentRepository(db),
		dayLocks:        postgresql.NewDayLockRepository(db),
		tx:              postgresql.NewTransactor(db),
		close:           db.Close,
	}, nil
}

func seedFacility(ctx context.Context, path string, repos repositories) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	facility, err := seed.Load(file)
	if err != nil {
		return err
	}
	sum, err := seed.Apply(ctx, facility, seed.Repositories{
		Employees: repos.employees,
		Machines:  repos.machines,
		Crews:     repos.crews,
	})
	if err != nil {
		return err
	}
	slog.Info("facility seeded", "file", path, "employees", sum.Employees, "machines", sum.Machines, "crews", sum.Crews)
	return nil
}
