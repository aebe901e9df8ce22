package attendance

import (
	"context"
	"time"
)

// WorkLogRepository is scoped by companyID on every read that a caller can
// reach with an arbitrary employee id.
type WorkLogRepository interface {
	// LockEmployeeDay takes the employee-day advisory lock and returns the
	// row for that day locked FOR UPDATE, or nil. Must run inside a transaction.
	LockEmployeeDay(ctx context.Context, employeeID string, logDate time.Time) (*WorkLog, error)

	// LockOpenSession returns the newest open work log with log_date >= since,
	// locked FOR UPDATE, or nil.
	LockOpenSession(ctx context.Context, employeeID string, since time.Time) (*WorkLog, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, logDate time.Time, companyID string) (*WorkLog, error)
	GetOpenSession(ctx context.Context, employeeID string, since time.Time, companyID string) (*WorkLog, error)

	// Upsert writes the row keyed by (employee_id, log_date).
	Upsert(ctx context.Context, w WorkLog) (WorkLog, error)

	// InsertIfMissing inserts w unless a row exists for its employee-day.
	InsertIfMissing(ctx context.Context, w WorkLog) (bool, error)

	ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]WorkLog, error)
	Delete(ctx context.Context, employeeID string, logDate time.Time, companyID string) error
}
