package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApprovedOverlapping returns approved requests of the employee that
	// share at least one date with [start, end], with their category.
	ListApprovedOverlapping(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]LeaveRequest, error)
}
