package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) assignment.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

const assignmentColumns = `id, employee_id, machine_id, environment, assignment_date, shift_type, role, position,
	start_time, end_time, auto_generated, is_override, is_locked, created_at, updated_at`

func shiftTypeOf(s string) shift.Type {
	return shift.Type(s)
}

func scanAssignment(row pgx.Row) (assignment.Assignment, error) {
	var (
		a         assignment.Assignment
		shiftType string
		role      string
	)
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.MachineID, &a.Environment, &a.Date, &shiftType, &role, &a.Position,
		&a.StartTime, &a.EndTime, &a.AutoGenerated, &a.IsOverride, &a.IsLocked, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, err
	}
	a.ShiftType = shiftTypeOf(shiftType)
	a.Role = assignment.SlotRole(role)
	return a, nil
}

func (r *assignmentRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	list := make([]assignment.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Upsert implements assignment.AssignmentRepository.
// The conflict target is the slot index, so a new occupant replaces the old one in place.
func (r *assignmentRepositoryImpl) Upsert(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	if a.Position == 0 {
		a.Position = 1
	}

	query := `
		INSERT INTO labor_assignments (employee_id, machine_id, environment, assignment_date, shift_type, role, position,
			start_time, end_time, auto_generated, is_override, is_locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (environment, (COALESCE(machine_id, 0)), assignment_date, shift_type, role, position) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			auto_generated = EXCLUDED.auto_generated,
			is_override = EXCLUDED.is_override,
			is_locked = EXCLUDED.is_locked,
			updated_at = NOW()
		RETURNING ` + assignmentColumns

	saved, err := scanAssignment(q.QueryRow(ctx, query,
		a.EmployeeID, a.MachineID, a.Environment, a.Date, string(a.ShiftType), string(a.Role), a.Position,
		a.StartTime, a.EndTime, a.AutoGenerated, a.IsOverride, a.IsLocked,
	))
	if err != nil {
		if isUniqueViolation(err) {
			// the per-employee working index caught a second working shift
			return assignment.Assignment{}, fmt.Errorf("%w: employee %d", assignment.ErrDuplicateShiftAssignment, a.EmployeeID)
		}
		return assignment.Assignment{}, fmt.Errorf("failed to upsert assignment: %w", err)
	}
	return saved, nil
}

// GetByID implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) GetByID(ctx context.Context, id int64) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAssignment(q.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM labor_assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrAssignmentNotFound
		}
		return assignment.Assignment{}, fmt.Errorf("failed to get assignment with id %d: %w", id, err)
	}
	return a, nil
}

// GetBySlot implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) GetBySlot(ctx context.Context, slot assignment.Slot) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	position := slot.Position
	if position == 0 {
		position = 1
	}

	query := `SELECT ` + assignmentColumns + `
		FROM labor_assignments
		WHERE environment = $1
			AND COALESCE(machine_id, 0) = COALESCE($2::BIGINT, 0)
			AND assignment_date = $3
			AND shift_type = $4
			AND role = $5
			AND position = $6`

	a, err := scanAssignment(q.QueryRow(ctx, query,
		slot.Environment, slot.MachineID, slot.Date, string(slot.ShiftType), string(slot.Role), position))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrAssignmentNotFound
		}
		return assignment.Assignment{}, fmt.Errorf("failed to get assignment for slot %s: %w", slot.Key(), err)
	}
	return a, nil
}

// Delete implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM labor_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrAssignmentNotFound
	}
	return nil
}

// ListByDate implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListByDate(ctx context.Context, date time.Time, environment *string) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM labor_assignments
		WHERE assignment_date = $1 AND ($2::VARCHAR IS NULL OR environment = $2)
		ORDER BY id`
	return r.list(ctx, query, date, environment)
}

// ListByEmployeeAndDate implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM labor_assignments
		WHERE employee_id = $1 AND assignment_date = $2
		ORDER BY id`
	return r.list(ctx, query, employeeID, date)
}

// CountByDate implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) CountByDate(ctx context.Context, date time.Time, environment string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM labor_assignments WHERE assignment_date = $1 AND environment = $2`
	if err := q.QueryRow(ctx, query, date, environment).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

// MarkLocked implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) MarkLocked(ctx context.Context, date time.Time, environment string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE labor_assignments
		SET is_locked = TRUE, updated_at = NOW()
		WHERE assignment_date = $1 AND environment = $2 AND NOT is_locked
	`
	tag, err := q.Exec(ctx, query, date, environment)
	if err != nil {
		return 0, fmt.Errorf("failed to mark assignments locked: %w", err)
	}
	return tag.RowsAffected(), nil
}
