package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, name, role, is_active
		FROM employees
		WHERE id = $1
	`

	var (
		found employee.Employee
		role  string
	)
	err := q.QueryRow(ctx, query, id).Scan(&found.ID, &found.Name, &role, &found.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %d: %w", id, err)
	}
	found.Role = employee.Role(role)
	return found, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, name, role, is_active
		FROM employees
		WHERE is_active = TRUE
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		var (
			emp  employee.Employee
			role string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &role, &emp.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.Role = employee.Role(role)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Save implements employee.EmployeeRepository.
// An explicit id is kept (used by seeding) and the id sequence moved past it.
func (e *employeeRepositoryImpl) Save(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	if emp.ID == 0 {
		query := `
			INSERT INTO employees (name, role, is_active)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		if err := q.QueryRow(ctx, query, emp.Name, string(emp.Role), emp.IsActive).Scan(&emp.ID); err != nil {
			return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
		}
		return emp, nil
	}

	query := `
		INSERT INTO employees (id, name, role, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, role = EXCLUDED.role, is_active = EXCLUDED.is_active, updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, emp.ID, emp.Name, string(emp.Role), emp.IsActive); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to save employee %d: %w", emp.ID, err)
	}
	if err := syncSequence(ctx, q, "employees"); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

// syncSequence moves a BIGSERIAL sequence past the largest id in table.
func syncSequence(ctx context.Context, q database.Querier, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST((SELECT MAX(id) FROM %s), 1))`,
		table, table,
	)
	if _, err := q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to sync %s id sequence: %w", table, err)
	}
	return nil
}
