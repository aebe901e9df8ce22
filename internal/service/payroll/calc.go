package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// Calculate builds the slip figures for one employee-month. Money is rounded
// to two places, half away from zero.
func Calculate(
	employeeID, companyID string,
	period time.Time,
	baseSalary decimal.Decimal,
	summary attendance.MonthlySummary,
	components []payroll.EmployeePayrollComponent,
) payroll.SalarySlip {
	totalAbsent := summary.AbsentDays + summary.NoShowDays
	lopDays := decimal.NewFromInt(int64(totalAbsent)).
		Add(half.Mul(decimal.NewFromInt(int64(summary.HalfDays)))).
		Add(decimal.NewFromInt(int64(summary.UnpaidLeaveDays)))

	perDay, lopAmount := decimal.Zero, decimal.Zero
	if summary.TotalWorkingDays > 0 {
		workingDays := decimal.NewFromInt(int64(summary.TotalWorkingDays))
		perDay = baseSalary.Div(workingDays).Round(2)
		lopAmount = lopDays.Mul(baseSalary).Div(workingDays).Round(2)
	}

	slip := payroll.SalarySlip{
		EmployeeID:       employeeID,
		CompanyID:        companyID,
		SalaryPeriod:     period,
		BasicSalary:      baseSalary,
		Earnings:         []payroll.LineItem{},
		Deductions:       []payroll.LineItem{},
		TotalWorkingDays: summary.TotalWorkingDays,
		AbsentDays:       totalAbsent,
		HalfDays:         summary.HalfDays,
		UnpaidLeaveDays:  summary.UnpaidLeaveDays,
		LOPDays:          lopDays,
		PerDaySalary:     perDay,
		LOPAmount:        lopAmount,
		Status:           payroll.SlipStatusGenerated,
	}

	benefits, deductions := decimal.Zero, decimal.Zero
	for _, c := range components {
		amount := c.Amount.Round(2)
		switch c.ComponentType {
		case payroll.ComponentTypeBenefit:
			slip.Earnings = append(slip.Earnings, payroll.LineItem{Kind: payroll.LineItemBenefit, Name: c.ComponentName, Amount: amount})
			benefits = benefits.Add(amount)
		case payroll.ComponentTypeDeduction:
			slip.Deductions = append(slip.Deductions, payroll.LineItem{Kind: payroll.LineItemDeduction, Name: c.ComponentName, Amount: amount})
			deductions = deductions.Add(amount)
		}
	}

	if lopDays.IsPositive() {
		slip.Deductions = append(slip.Deductions, payroll.LineItem{
			Kind:   payroll.LineItemLOP,
			Name:   fmt.Sprintf("Loss of Pay (%s days)", lopDays.String()),
			Amount: lopAmount,
		})
	}

	slip.TotalEarnings = baseSalary.Add(benefits)
	slip.TotalDeductions = deductions.Add(lopAmount)
	slip.NetPayable = decimal.Max(decimal.Zero, slip.TotalEarnings.Sub(slip.TotalDeductions))
	return slip
}
