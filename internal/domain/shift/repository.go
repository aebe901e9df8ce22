package shift

import (
	"context"
	"time"
)

type ShiftRepository interface {
	Create(ctx context.Context, s Shift) (Shift, error)
	Update(ctx context.Context, s Shift) (Shift, error)
	GetByID(ctx context.Context, id string, companyID string) (Shift, error)
	ListByCompany(ctx context.Context, companyID string) ([]Shift, error)
}

type AssignmentRepository interface {
	// Upsert writes the window for (shift_id, employee_id), replacing any existing one.
	Upsert(ctx context.Context, a Assignment) (Assignment, error)
	ListByEmployee(ctx context.Context, employeeID string, companyID string) ([]Assignment, error)

	// GetEffectiveShift returns the shift of the earliest-starting assignment
	// covering date, or nil.
	GetEffectiveShift(ctx context.Context, employeeID string, date time.Time) (*Shift, error)
}
