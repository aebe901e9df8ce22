package shift

import (
	"context"
	"time"
)

// Resolver finds the shift an employee works on a date.
type Resolver interface {
	ResolveShift(ctx context.Context, employeeID string, date time.Time) (*Shift, error)
}

type Service interface {
	Resolver

	CreateShift(ctx context.Context, companyID string, req CreateShiftRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, companyID string, req UpdateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, companyID string, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context, companyID string) ([]ShiftResponse, error)

	// AssignShift writes one assignment per employee. Failures for individual
	// employees are reported in the response and joined into the error; they
	// do not undo the other assignments.
	AssignShift(ctx context.Context, companyID string, req AssignShiftRequest) (AssignShiftResponse, error)
	ListAssignments(ctx context.Context, companyID string, employeeID string) ([]AssignmentResponse, error)
}
