package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/migrations"
)

// TestDatabaseSetup holds the connection used by the repository tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// It returns nil without error when the variable is unset.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolSize{MaxConns: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	if err := migrations.Apply(ctx, db.Pool); err != nil {
		db.Close()
		return nil, err
	}

	return &TestDatabaseSetup{DB: db}, nil
}

// TruncateAllTables empties the roster tables and resets their sequences.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"day_locks",
		"labor_assignments",
		"crew_assignments",
		"machine_crews",
		"machines",
		"employees",
	}

	for _, table := range tables {
		if _, err := t.DB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
