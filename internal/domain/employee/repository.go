package employee

import "context"

// EmployeeRepository is the read side of the employee roster plus the
// insert used by facility seeding.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	Save(ctx context.Context, emp Employee) (Employee, error)
}
