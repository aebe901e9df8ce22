package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	ClockIn(ctx context.Context, companyID string, employeeID string, cc ClockContext) (WorkLogResponse, error)
	ClockOut(ctx context.Context, companyID string, employeeID string, cc ClockContext) (WorkLogResponse, error)
	GetCurrentStatus(ctx context.Context, companyID string, employeeID string) (CurrentStatusResponse, error)

	// RecordAttendance creates or corrects one employee-day by hand.
	RecordAttendance(ctx context.Context, companyID string, req RecordAttendanceRequest) (WorkLogResponse, error)

	// BulkRecordAttendance records each entry in its own transaction. The
	// returned error joins every failure; successes are kept.
	BulkRecordAttendance(ctx context.Context, companyID string, reqs []RecordAttendanceRequest) (BulkRecordResponse, error)

	DeleteWorkLog(ctx context.Context, companyID string, employeeID string, logDate time.Time) error
	GetMonthlyAttendance(ctx context.Context, companyID string, employeeID string, month, year int) (MonthlySummary, error)

	// MarkAbsentees writes an absent row for every active employee with no
	// work log and no approved leave on a working date. Returns rows created.
	MarkAbsentees(ctx context.Context, companyID string, date time.Time) (int, error)
}

// Aggregator rolls a month of work logs and leave into a MonthlySummary.
type Aggregator interface {
	Aggregate(ctx context.Context, companyID string, employeeID string, month, year int) (MonthlySummary, error)
}
