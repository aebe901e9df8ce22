package payroll

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeBenefit   ComponentType = "benefit"
	ComponentTypeDeduction ComponentType = "deduction"
)

// PayrollComponent - Master payroll component
type PayrollComponent struct {
	ID          string
	CompanyID   string
	Name        string
	Type        ComponentType
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmployeePayrollComponent - Recurring component amount for one employee
type EmployeePayrollComponent struct {
	ID                 string
	EmployeeID         string
	PayrollComponentID string
	Amount             decimal.Decimal
	EffectiveDate      time.Time
	EndDate            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	ComponentName     string
	ComponentType     ComponentType
	ComponentIsActive bool
}

// ActiveDuring reports whether the component applies to a period.
func (c EmployeePayrollComponent) ActiveDuring(start, end time.Time) bool {
	return c.ComponentIsActive && daterange.Range{From: &c.EffectiveDate, To: c.EndDate}.Overlaps(daterange.New(start, end))
}

// LineItemKind enum
type LineItemKind string

const (
	LineItemBenefit   LineItemKind = "benefit"
	LineItemDeduction LineItemKind = "deduction"
	LineItemLOP       LineItemKind = "lop"
)

type LineItem struct {
	Kind   LineItemKind    `json:"kind"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// SlipStatus enum
type SlipStatus string

const (
	SlipStatusGenerated SlipStatus = "generated"
	SlipStatusPaid      SlipStatus = "paid"
)

// SalarySlip - one employee's pay for one month. Terminal once paid.
type SalarySlip struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	SalaryPeriod time.Time // first day of the month
	BasicSalary  decimal.Decimal
	Earnings     []LineItem
	Deductions   []LineItem

	TotalWorkingDays int
	AbsentDays       int
	HalfDays         int
	UnpaidLeaveDays  int
	LOPDays          decimal.Decimal
	PerDaySalary     decimal.Decimal
	LOPAmount        decimal.Decimal

	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPayable      decimal.Decimal

	Status           SlipStatus
	PaymentMethod    *string
	PaymentReference *string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

func (s SalarySlip) Month() int { return int(s.SalaryPeriod.Month()) }
func (s SalarySlip) Year() int  { return s.SalaryPeriod.Year() }

type PaymentInfo struct {
	Method    string `json:"payment_method"`
	Reference string `json:"payment_reference"`
}
