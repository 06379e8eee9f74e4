package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type machineRepositoryImpl struct {
	db *database.DB
}

func NewMachineRepository(db *database.DB) machine.MachineRepository {
	return &machineRepositoryImpl{db: db}
}

const machineColumns = `id, name, environment, status, operators_per_shift, hopper_loaders_per_shift,
	packers_per_shift, day_shift_active, night_shift_active, shift_cycle_enabled, cycle_start_date, crew_size`

func scanMachine(row pgx.Row) (machine.Machine, error) {
	var (
		m      machine.Machine
		status string
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.Environment, &status, &m.OperatorsPerShift, &m.HopperLoadersPerShift,
		&m.PackersPerShift, &m.DayShiftActive, &m.NightShiftActive, &m.ShiftCycleEnabled, &m.CycleStartDate, &m.CrewSize,
	)
	if err != nil {
		return machine.Machine{}, err
	}
	m.Status = machine.Status(status)
	return m, nil
}

// GetByID implements machine.MachineRepository.
func (r *machineRepositoryImpl) GetByID(ctx context.Context, id int64) (machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	m, err := scanMachine(q.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return machine.Machine{}, machine.ErrMachineNotFound
		}
		return machine.Machine{}, fmt.Errorf("failed to get machine with id %d: %w", id, err)
	}
	return m, nil
}

// ListActiveForDate implements machine.MachineRepository.
// Activity comes from the machine status; the date is accepted for callers
// that plan ahead and is not stored per machine.
func (r *machineRepositoryImpl) ListActiveForDate(ctx context.Context, environment string, _ time.Time) ([]machine.Machine, error) {
	query := `SELECT ` + machineColumns + `
		FROM machines
		WHERE environment = $1 AND status = $2
		ORDER BY id`

	return r.list(ctx, query, environment, string(machine.StatusActive))
}

// ListCycleEnabled implements machine.MachineRepository.
func (r *machineRepositoryImpl) ListCycleEnabled(ctx context.Context) ([]machine.Machine, error) {
	query := `SELECT ` + machineColumns + `
		FROM machines
		WHERE status = $1 AND shift_cycle_enabled AND cycle_start_date IS NOT NULL
		ORDER BY id`

	return r.list(ctx, query, string(machine.StatusActive))
}

func (r *machineRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	machines := make([]machine.Machine, 0)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

// Save implements machine.MachineRepository.
func (r *machineRepositoryImpl) Save(ctx context.Context, m machine.Machine) (machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	args := []interface{}{
		m.Name, m.Environment, string(m.Status), m.OperatorsPerShift, m.HopperLoadersPerShift,
		m.PackersPerShift, m.DayShiftActive, m.NightShiftActive, m.ShiftCycleEnabled, m.CycleStartDate, m.CrewSize,
	}

	if m.ID == 0 {
		query := `
			INSERT INTO machines (name, environment, status, operators_per_shift, hopper_loaders_per_shift,
				packers_per_shift, day_shift_active, night_shift_active, shift_cycle_enabled, cycle_start_date, crew_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`
		if err := q.QueryRow(ctx, query, args...).Scan(&m.ID); err != nil {
			return machine.Machine{}, fmt.Errorf("failed to create machine: %w", err)
		}
		return m, nil
	}

	query := `
		INSERT INTO machines (id, name, environment, status, operators_per_shift, hopper_loaders_per_shift,
			packers_per_shift, day_shift_active, night_shift_active, shift_cycle_enabled, cycle_start_date, crew_size)
		VALUES ($12, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			environment = EXCLUDED.environment,
			status = EXCLUDED.status,
			operators_per_shift = EXCLUDED.operators_per_shift,
			hopper_loaders_per_shift = EXCLUDED.hopper_loaders_per_shift,
			packers_per_shift = EXCLUDED.packers_per_shift,
			day_shift_active = EXCLUDED.day_shift_active,
			night_shift_active = EXCLUDED.night_shift_active,
			shift_cycle_enabled = EXCLUDED.shift_cycle_enabled,
			cycle_start_date = EXCLUDED.cycle_start_date,
			crew_size = EXCLUDED.crew_size
	`
	if _, err := q.Exec(ctx, query, append(args, m.ID)...); err != nil {
		return machine.Machine{}, fmt.Errorf("failed to save machine %d: %w", m.ID, err)
	}
	if err := syncSequence(ctx, q, "machines"); err != nil {
		return machine.Machine{}, err
	}
	return m, nil
}
