package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

func (r *leaveRequestRepository) ListApprovedOverlapping(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.leave_type_id, lt.name, lt.category, lr.start_date, lr.end_date, lr.status
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.employee_id = $1
		  AND e.company_id = $2
		  AND lr.status = 'approved'
		  AND lr.start_date <= $4
		  AND lr.end_date >= $3
		ORDER BY lr.start_date ASC
	`
	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var lr leave.LeaveRequest
		if err := rows.Scan(&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.LeaveTypeName, &lr.Category, &lr.StartDate, &lr.EndDate, &lr.Status); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
