package leave

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// Category decides whether leave days reduce pay.
type Category string

const (
	CategoryPaid   Category = "paid"
	CategoryUnpaid Category = "unpaid"
)

// LeaveRequest is owned by the leave workflow; the engine reads approved rows.
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	LeaveTypeID   string
	LeaveTypeName string
	Category      Category
	StartDate     time.Time
	EndDate       time.Time
	Status        LeaveRequestStatus
}

func (l LeaveRequest) IsUnpaid() bool {
	return l.Category == CategoryUnpaid
}

func (l LeaveRequest) Range() daterange.Range {
	return daterange.New(l.StartDate, l.EndDate)
}
