package payroll

import "errors"

var (
	ErrPayrollComponentNotFound   = errors.New("payroll component not found")
	ErrPayrollComponentNameExists = errors.New("payroll component name already exists")
	ErrEmployeeComponentNotFound  = errors.New("employee component assignment not found")
	ErrSalarySlipNotFound         = errors.New("salary slip not found")
	ErrSlipAlreadyPaid            = errors.New("salary slip is already paid")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrEmployeeHasNoBaseSalary    = errors.New("employee has no base salary configured")
)
