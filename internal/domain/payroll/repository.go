package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Components
	CreateComponent(ctx context.Context, component PayrollComponent) (PayrollComponent, error)
	GetComponentByID(ctx context.Context, id string, companyID string) (PayrollComponent, error)
	GetComponentsByCompanyID(ctx context.Context, companyID string, activeOnly bool) ([]PayrollComponent, error)

	// Employee Components
	AssignComponentToEmployee(ctx context.Context, assignment EmployeePayrollComponent, companyID string) (EmployeePayrollComponent, error)
	GetEmployeeComponents(ctx context.Context, employeeID string, companyID string) ([]EmployeePayrollComponent, error)
	// GetActiveEmployeeComponents returns assignments of active components
	// whose window overlaps [start, end], benefits first, then by name.
	GetActiveEmployeeComponents(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]EmployeePayrollComponent, error)
	RemoveEmployeeComponent(ctx context.Context, id string, employeeID string, companyID string) error

	// Salary slips
	// LockEmployeePeriod serializes slip writes for one employee-month until
	// the surrounding transaction ends.
	LockEmployeePeriod(ctx context.Context, employeeID string, period time.Time) error
	GetSlipByEmployeePeriod(ctx context.Context, employeeID string, period time.Time, companyID string) (*SalarySlip, error)
	// CreateSlip inserts the slip unless one exists for the employee-period.
	// The returned bool is false when the existing row was returned instead.
	CreateSlip(ctx context.Context, slip SalarySlip) (SalarySlip, bool, error)
	// UpdateSlipFigures overwrites the computed figures of a generated slip.
	UpdateSlipFigures(ctx context.Context, slip SalarySlip) (SalarySlip, error)
	GetSlipByID(ctx context.Context, id string, companyID string, forUpdate bool) (SalarySlip, error)
	ListSlipsByPeriod(ctx context.Context, companyID string, period time.Time) ([]SalarySlip, error)
	MarkSlipPaid(ctx context.Context, id string, companyID string, info PaymentInfo, paidAt time.Time) (SalarySlip, error)
}
