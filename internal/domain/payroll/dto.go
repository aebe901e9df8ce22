package payroll

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPONENT DTOs ==========

type CreatePayrollComponentRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "benefit" or "deduction"
	Description *string `json:"description,omitempty"`
}

func (r *CreatePayrollComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Type != string(ComponentTypeBenefit) && r.Type != string(ComponentTypeDeduction) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be 'benefit' or 'deduction'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollComponentResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func NewPayrollComponentResponse(c PayrollComponent) PayrollComponentResponse {
	return PayrollComponentResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Type:        string(c.Type),
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

type AssignComponentRequest struct {
	EmployeeID         string          `json:"-"`
	PayrollComponentID string          `json:"payroll_component_id"`
	Amount             decimal.Decimal `json:"amount"`
	EffectiveDate      string          `json:"effective_date"`
	EndDate            *string         `json:"end_date,omitempty"`
}

func (r *AssignComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.PayrollComponentID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_component_id", Message: "must be a valid UUID"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	from, fromOK := validator.IsValidDate(r.EffectiveDate)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.EndDate != nil {
		to, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		} else if fromOK && to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be on or after effective_date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeComponentResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	PayrollComponentID string          `json:"payroll_component_id"`
	ComponentName      string          `json:"component_name"`
	ComponentType      string          `json:"component_type"`
	Amount             decimal.Decimal `json:"amount"`
	EffectiveDate      string          `json:"effective_date"`
	EndDate            *string         `json:"end_date,omitempty"`
}

func NewEmployeeComponentResponse(c EmployeePayrollComponent) EmployeeComponentResponse {
	resp := EmployeeComponentResponse{
		ID:                 c.ID,
		EmployeeID:         c.EmployeeID,
		PayrollComponentID: c.PayrollComponentID,
		ComponentName:      c.ComponentName,
		ComponentType:      string(c.ComponentType),
		Amount:             c.Amount,
		EffectiveDate:      daterange.Format(c.EffectiveDate),
	}
	if c.EndDate != nil {
		s := daterange.Format(*c.EndDate)
		resp.EndDate = &s
	}
	return resp
}

// ========== SALARY SLIP DTOs ==========

type GenerateSlipsRequest struct {
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *GenerateSlipsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be 1-12 and year a four digit year"})
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "invalid employee id " + id})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkPaidRequest struct {
	SlipIDs []string `json:"slip_ids"`
	PaymentInfo
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.SlipIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "slip_ids", Message: "at least one slip is required"})
	}
	for _, id := range r.SlipIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "slip_ids", Message: "invalid slip id " + id})
			break
		}
	}
	if validator.IsEmpty(r.Method) {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalarySlipResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	EmployeeCode *string         `json:"employee_code,omitempty"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	BasicSalary  decimal.Decimal `json:"basic_salary"`
	Earnings     []LineItem      `json:"earnings"`
	Deductions   []LineItem      `json:"deductions"`

	TotalWorkingDays int             `json:"total_working_days"`
	AbsentDays       int             `json:"absent_days"`
	HalfDays         int             `json:"half_days"`
	UnpaidLeaveDays  int             `json:"unpaid_leave_days"`
	LOPDays          decimal.Decimal `json:"lop_days"`
	PerDaySalary     decimal.Decimal `json:"per_day_salary"`
	LOPAmount        decimal.Decimal `json:"lop_amount"`

	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPayable      decimal.Decimal `json:"net_payable"`

	Status           string     `json:"status"`
	PaymentMethod    *string    `json:"payment_method,omitempty"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewSalarySlipResponse(s SalarySlip) SalarySlipResponse {
	earnings, deductions := s.Earnings, s.Deductions
	if earnings == nil {
		earnings = []LineItem{}
	}
	if deductions == nil {
		deductions = []LineItem{}
	}
	return SalarySlipResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     s.EmployeeName,
		EmployeeCode:     s.EmployeeCode,
		Month:            s.Month(),
		Year:             s.Year(),
		BasicSalary:      s.BasicSalary,
		Earnings:         earnings,
		Deductions:       deductions,
		TotalWorkingDays: s.TotalWorkingDays,
		AbsentDays:       s.AbsentDays,
		HalfDays:         s.HalfDays,
		UnpaidLeaveDays:  s.UnpaidLeaveDays,
		LOPDays:          s.LOPDays,
		PerDaySalary:     s.PerDaySalary,
		LOPAmount:        s.LOPAmount,
		TotalEarnings:    s.TotalEarnings,
		TotalDeductions:  s.TotalDeductions,
		NetPayable:       s.NetPayable,
		Status:           string(s.Status),
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		PaidAt:           s.PaidAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

type BulkGenerateResponse struct {
	Slips    []SalarySlipResponse `json:"slips"`
	Failures []BulkFailure        `json:"failures"`
}

type BulkMarkPaidResponse struct {
	Paid     []SalarySlipResponse `json:"paid"`
	Failures []BulkFailure        `json:"failures"`
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}
