package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)

	// ListActiveCompanyIDs returns every tenant with at least one active employee.
	ListActiveCompanyIDs(ctx context.Context) ([]string, error)
}
