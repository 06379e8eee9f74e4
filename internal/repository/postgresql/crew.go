package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type crewRepositoryImpl struct {
	db *database.DB
}

func NewCrewRepository(db *database.DB) crew.CrewRepository {
	return &crewRepositoryImpl{db: db}
}

func scanCrew(row pgx.Row) (crew.Crew, error) {
	var (
		c       crew.Crew
		letter  string
		members []byte
	)
	if err := row.Scan(&c.ID, &c.MachineID, &letter, &c.CycleOffset, &members, &c.IsActive); err != nil {
		return crew.Crew{}, err
	}
	c.Letter = crew.Letter(letter)
	// the employees column is validated on the way out as well as in
	if err := json.Unmarshal(members, &c.Members); err != nil {
		return crew.Crew{}, fmt.Errorf("crew %d: %w", c.ID, err)
	}
	return c, nil
}

// Create implements crew.CrewRepository.
func (r *crewRepositoryImpl) Create(ctx context.Context, c crew.Crew) (crew.Crew, error) {
	q := GetQuerier(ctx, r.db)

	members, err := json.Marshal(c.Members)
	if err != nil {
		return crew.Crew{}, fmt.Errorf("failed to encode crew members: %w", err)
	}

	query := `
		INSERT INTO machine_crews (machine_id, crew_letter, cycle_offset, employees, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, machine_id, crew_letter, cycle_offset, employees, is_active
	`
	created, err := scanCrew(q.QueryRow(ctx, query, c.MachineID, string(c.Letter), c.CycleOffset, members, c.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return crew.Crew{}, crew.ErrCrewLetterExists
		}
		return crew.Crew{}, fmt.Errorf("failed to create crew: %w", err)
	}
	return created, nil
}

// GetByID implements crew.CrewRepository.
func (r *crewRepositoryImpl) GetByID(ctx context.Context, id int64) (crew.Crew, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, machine_id, crew_letter, cycle_offset, employees, is_active
		FROM machine_crews
		WHERE id = $1
	`
	c, err := scanCrew(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crew.Crew{}, crew.ErrCrewNotFound
		}
		return crew.Crew{}, fmt.Errorf("failed to get crew with id %d: %w", id, err)
	}
	return c, nil
}

// ListByMachine implements crew.CrewRepository.
func (r *crewRepositoryImpl) ListByMachine(ctx context.Context, machineID int64) ([]crew.Crew, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, machine_id, crew_letter, cycle_offset, employees, is_active
		FROM machine_crews
		WHERE machine_id = $1
		ORDER BY crew_letter
	`
	rows, err := q.Query(ctx, query, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}
	defer rows.Close()

	crews := make([]crew.Crew, 0, 3)
	for rows.Next() {
		c, err := scanCrew(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crew: %w", err)
		}
		crews = append(crews, c)
	}
	return crews, rows.Err()
}

// UpdateMembers implements crew.CrewRepository.
func (r *crewRepositoryImpl) UpdateMembers(ctx context.Context, id int64, members crew.Members) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to encode crew members: %w", err)
	}

	tag, err := q.Exec(ctx, `UPDATE machine_crews SET employees = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return fmt.Errorf("failed to update crew %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return crew.ErrCrewNotFound
	}
	return nil
}

type crewAssignmentRepositoryImpl struct {
	db *database.DB
}

func NewCrewAssignmentRepository(db *database.DB) crew.CrewAssignmentRepository {
	return &crewAssignmentRepositoryImpl{db: db}
}

func scanCrewAssignment(row pgx.Row) (crew.CrewAssignment, error) {
	var (
		ca        crew.CrewAssignment
		shiftType string
	)
	err := row.Scan(&ca.ID, &ca.MachineID, &ca.CrewID, &ca.Date, &shiftType, &ca.AutoGenerated, &ca.IsOverride, &ca.OverrideReason)
	if err != nil {
		return crew.CrewAssignment{}, err
	}
	ca.ShiftType = shiftTypeOf(shiftType)
	return ca, nil
}

// Upsert implements crew.CrewAssignmentRepository.
// The WHERE clause keeps an override from being replaced by a generated row.
func (r *crewAssignmentRepositoryImpl) Upsert(ctx context.Context, ca crew.CrewAssignment) (crew.CrewAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO crew_assignments (machine_id, crew_id, assignment_date, shift_type, auto_generated, is_override, override_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (crew_id, assignment_date) DO UPDATE SET
			shift_type = EXCLUDED.shift_type,
			auto_generated = EXCLUDED.auto_generated,
			is_override = EXCLUDED.is_override,
			override_reason = EXCLUDED.override_reason
		WHERE NOT crew_assignments.is_override OR EXCLUDED.is_override
		RETURNING id, machine_id, crew_id, assignment_date, shift_type, auto_generated, is_override, override_reason
	`
	saved, err := scanCrewAssignment(q.QueryRow(ctx, query,
		ca.MachineID, ca.CrewID, ca.Date, string(ca.ShiftType), ca.AutoGenerated, ca.IsOverride, ca.OverrideReason))
	if errors.Is(err, pgx.ErrNoRows) {
		// conflict skipped by the WHERE clause: return the stored override
		existing := `
			SELECT id, machine_id, crew_id, assignment_date, shift_type, auto_generated, is_override, override_reason
			FROM crew_assignments
			WHERE crew_id = $1 AND assignment_date = $2
		`
		saved, err = scanCrewAssignment(q.QueryRow(ctx, existing, ca.CrewID, ca.Date))
	}
	if err != nil {
		return crew.CrewAssignment{}, fmt.Errorf("failed to upsert crew assignment: %w", err)
	}
	return saved, nil
}

// ListByMachine implements crew.CrewAssignmentRepository.
func (r *crewAssignmentRepositoryImpl) ListByMachine(ctx context.Context, machineID int64, from, to time.Time) ([]crew.CrewAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, machine_id, crew_id, assignment_date, shift_type, auto_generated, is_override, override_reason
		FROM crew_assignments
		WHERE machine_id = $1 AND assignment_date BETWEEN $2 AND $3
		ORDER BY assignment_date, crew_id
	`
	rows, err := q.Query(ctx, query, machineID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew assignments: %w", err)
	}
	defer rows.Close()

	list := make([]crew.CrewAssignment, 0)
	for rows.Next() {
		ca, err := scanCrewAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crew assignment: %w", err)
		}
		list = append(list, ca)
	}
	return list, rows.Err()
}
