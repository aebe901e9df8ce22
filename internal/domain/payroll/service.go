package payroll

import "context"

type PayrollService interface {
	// Components
	CreateComponent(ctx context.Context, companyID string, req CreatePayrollComponentRequest) (PayrollComponentResponse, error)
	ListComponents(ctx context.Context, companyID string) ([]PayrollComponentResponse, error)
	AssignComponent(ctx context.Context, companyID string, req AssignComponentRequest) (EmployeeComponentResponse, error)
	ListEmployeeComponents(ctx context.Context, companyID string, employeeID string) ([]EmployeeComponentResponse, error)
	RemoveEmployeeComponent(ctx context.Context, companyID string, employeeID string, id string) error

	// GenerateSalarySlip returns the existing slip for the period unchanged,
	// or computes and stores a new one.
	GenerateSalarySlip(ctx context.Context, companyID string, employeeID string, month, year int) (SalarySlipResponse, error)
	// RecomputeSalarySlip recalculates a generated slip from current data.
	RecomputeSalarySlip(ctx context.Context, companyID string, employeeID string, month, year int) (SalarySlipResponse, error)
	BulkGenerateSalarySlips(ctx context.Context, companyID string, req GenerateSlipsRequest) (BulkGenerateResponse, error)

	GetSalarySlip(ctx context.Context, companyID string, id string) (SalarySlipResponse, error)
	ListSalarySlips(ctx context.Context, companyID string, month, year int) ([]SalarySlipResponse, error)

	MarkSlipPaid(ctx context.Context, companyID string, slipID string, info PaymentInfo) (SalarySlipResponse, error)
	BulkMarkSlipsPaid(ctx context.Context, companyID string, req MarkPaidRequest) (BulkMarkPaidResponse, error)
}
