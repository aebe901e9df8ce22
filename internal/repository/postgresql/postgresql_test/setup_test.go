package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. Tests
// are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, postgresql.Migrate(context.Background(), db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows the engine owns or reads.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"salary_slips",
		"employee_payroll_components",
		"payroll_components",
		"work_logs",
		"shift_assignments",
		"shifts",
		"calendar_configurations",
		"leave_requests",
		"leave_types",
		"employees",
		"companies",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) CreateCompany(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	_, err := t.DB.Exec(ctx, `INSERT INTO companies (id, name) VALUES ($1, $2)`, id, name)
	return id, err
}

func (t *TestDatabaseSetup) CreateEmployee(ctx context.Context, companyID, code string) (string, error) {
	id := uuid.NewString()
	_, err := t.DB.Exec(ctx,
		`INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, base_salary)
		 VALUES ($1, $2, $3, $4, '2024-01-01', 3000)`,
		id, companyID, code, "Employee "+code)
	return id, err
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
