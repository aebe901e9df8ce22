package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type payrollRepo struct{ s *Store }

// ========== COMPONENTS ==========

func (r payrollRepo) CreateComponent(_ context.Context, c payroll.PayrollComponent) (payroll.PayrollComponent, error) {
	c.ID = newID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	var err error
	r.s.write(func(d *state) {
		for _, other := range d.components {
			if other.CompanyID == c.CompanyID && other.Name == c.Name {
				err = payroll.ErrPayrollComponentNameExists
				return
			}
		}
		d.components[c.ID] = c
	})
	if err != nil {
		return payroll.PayrollComponent{}, err
	}
	return c, nil
}

func (r payrollRepo) GetComponentByID(_ context.Context, id string, companyID string) (payroll.PayrollComponent, error) {
	var c payroll.PayrollComponent
	var ok bool
	r.s.read(func(d *state) { c, ok = d.components[id] })
	if !ok || c.CompanyID != companyID {
		return payroll.PayrollComponent{}, payroll.ErrPayrollComponentNotFound
	}
	return c, nil
}

func (r payrollRepo) GetComponentsByCompanyID(_ context.Context, companyID string, activeOnly bool) ([]payroll.PayrollComponent, error) {
	var out []payroll.PayrollComponent
	r.s.read(func(d *state) {
		for _, c := range d.components {
			if c.CompanyID == companyID && (!activeOnly || c.IsActive) {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ========== EMPLOYEE COMPONENTS ==========

func joinComponent(d *state, a payroll.EmployeePayrollComponent) payroll.EmployeePayrollComponent {
	if c, ok := d.components[a.PayrollComponentID]; ok {
		a.ComponentName = c.Name
		a.ComponentType = c.Type
		a.ComponentIsActive = c.IsActive
	}
	return a
}

func (r payrollRepo) AssignComponentToEmployee(_ context.Context, a payroll.EmployeePayrollComponent, companyID string) (payroll.EmployeePayrollComponent, error) {
	var err error
	r.s.write(func(d *state) {
		e, okEmp := d.employees[a.EmployeeID]
		c, okComp := d.components[a.PayrollComponentID]
		if !okEmp || !okComp || e.CompanyID != companyID || c.CompanyID != companyID {
			err = payroll.ErrPayrollComponentNotFound
			return
		}
		a.ID = newID()
		a.CreatedAt = r.s.now()
		a.UpdatedAt = a.CreatedAt
		d.employeeComponents[a.ID] = a
		a = joinComponent(d, a)
	})
	if err != nil {
		return payroll.EmployeePayrollComponent{}, err
	}
	return a, nil
}

func (r payrollRepo) GetEmployeeComponents(_ context.Context, employeeID string, companyID string) ([]payroll.EmployeePayrollComponent, error) {
	return r.employeeComponents(employeeID, companyID, func(payroll.EmployeePayrollComponent) bool { return true }), nil
}

func (r payrollRepo) GetActiveEmployeeComponents(_ context.Context, employeeID string, companyID string, start, end time.Time) ([]payroll.EmployeePayrollComponent, error) {
	return r.employeeComponents(employeeID, companyID, func(a payroll.EmployeePayrollComponent) bool {
		return a.ActiveDuring(start, end)
	}), nil
}

func (r payrollRepo) employeeComponents(employeeID, companyID string, keep func(payroll.EmployeePayrollComponent) bool) []payroll.EmployeePayrollComponent {
	var out []payroll.EmployeePayrollComponent
	r.s.read(func(d *state) {
		if e, ok := d.employees[employeeID]; !ok || e.CompanyID != companyID {
			return
		}
		for _, a := range d.employeeComponents {
			if a.EmployeeID != employeeID {
				continue
			}
			a = joinComponent(d, a)
			if keep(a) {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ComponentType != out[j].ComponentType {
			return out[i].ComponentType < out[j].ComponentType
		}
		if out[i].ComponentName != out[j].ComponentName {
			return out[i].ComponentName < out[j].ComponentName
		}
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}

func (r payrollRepo) RemoveEmployeeComponent(_ context.Context, id string, employeeID string, companyID string) error {
	var err error
	r.s.write(func(d *state) {
		a, ok := d.employeeComponents[id]
		e, okEmp := d.employees[employeeID]
		if !ok || !okEmp || a.EmployeeID != employeeID || e.CompanyID != companyID {
			err = payroll.ErrEmployeeComponentNotFound
			return
		}
		delete(d.employeeComponents, id)
	})
	return err
}

// ========== SALARY SLIPS ==========

func (r payrollRepo) LockEmployeePeriod(context.Context, string, time.Time) error { return nil }

func joinEmployee(d *state, s payroll.SalarySlip) payroll.SalarySlip {
	if e, ok := d.employees[s.EmployeeID]; ok {
		name, code := e.FullName, e.EmployeeCode
		s.EmployeeName = &name
		s.EmployeeCode = &code
	}
	s.Earnings = slices.Clone(s.Earnings)
	s.Deductions = slices.Clone(s.Deductions)
	return s
}

func findSlip(d *state, employeeID string, period time.Time) (payroll.SalarySlip, bool) {
	for _, s := range d.slips {
		if s.EmployeeID == employeeID && daterange.Key(s.SalaryPeriod) == daterange.Key(period) {
			return s, true
		}
	}
	return payroll.SalarySlip{}, false
}

func (r payrollRepo) GetSlipByEmployeePeriod(_ context.Context, employeeID string, period time.Time, companyID string) (*payroll.SalarySlip, error) {
	var found *payroll.SalarySlip
	r.s.read(func(d *state) {
		if s, ok := findSlip(d, employeeID, period); ok && s.CompanyID == companyID {
			s = joinEmployee(d, s)
			found = &s
		}
	})
	return found, nil
}

func (r payrollRepo) CreateSlip(_ context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, bool, error) {
	created := false
	r.s.write(func(d *state) {
		if existing, ok := findSlip(d, slip.EmployeeID, slip.SalaryPeriod); ok {
			slip = joinEmployee(d, existing)
			return
		}
		slip.ID = newID()
		slip.Status = payroll.SlipStatusGenerated
		slip.CreatedAt = r.s.now()
		slip.UpdatedAt = slip.CreatedAt
		slip.EmployeeName, slip.EmployeeCode = nil, nil
		d.slips[slip.ID] = slip
		slip = joinEmployee(d, slip)
		created = true
	})
	return slip, created, nil
}

func (r payrollRepo) UpdateSlipFigures(_ context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	var err error
	r.s.write(func(d *state) {
		existing, ok := d.slips[slip.ID]
		if !ok || existing.CompanyID != slip.CompanyID || existing.Status != payroll.SlipStatusGenerated {
			err = payroll.ErrSlipAlreadyPaid
			return
		}
		existing.BasicSalary = slip.BasicSalary
		existing.Earnings = slip.Earnings
		existing.Deductions = slip.Deductions
		existing.TotalWorkingDays = slip.TotalWorkingDays
		existing.AbsentDays = slip.AbsentDays
		existing.HalfDays = slip.HalfDays
		existing.UnpaidLeaveDays = slip.UnpaidLeaveDays
		existing.LOPDays = slip.LOPDays
		existing.PerDaySalary = slip.PerDaySalary
		existing.LOPAmount = slip.LOPAmount
		existing.TotalEarnings = slip.TotalEarnings
		existing.TotalDeductions = slip.TotalDeductions
		existing.NetPayable = slip.NetPayable
		existing.UpdatedAt = r.s.now()
		d.slips[slip.ID] = existing
		slip = joinEmployee(d, existing)
	})
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	return slip, nil
}

func (r payrollRepo) GetSlipByID(_ context.Context, id string, companyID string, _ bool) (payroll.SalarySlip, error) {
	var s payroll.SalarySlip
	var ok bool
	r.s.read(func(d *state) {
		s, ok = d.slips[id]
		if ok {
			s = joinEmployee(d, s)
		}
	})
	if !ok || s.CompanyID != companyID {
		return payroll.SalarySlip{}, payroll.ErrSalarySlipNotFound
	}
	return s, nil
}

func (r payrollRepo) ListSlipsByPeriod(_ context.Context, companyID string, period time.Time) ([]payroll.SalarySlip, error) {
	var out []payroll.SalarySlip
	r.s.read(func(d *state) {
		for _, s := range d.slips {
			if s.CompanyID == companyID && daterange.Key(s.SalaryPeriod) == daterange.Key(period) {
				out = append(out, joinEmployee(d, s))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return employeeCode(out[i]) < employeeCode(out[j]) })
	return out, nil
}

func (r payrollRepo) MarkSlipPaid(_ context.Context, id string, companyID string, info payroll.PaymentInfo, paidAt time.Time) (payroll.SalarySlip, error) {
	var s payroll.SalarySlip
	var err error
	r.s.write(func(d *state) {
		existing, ok := d.slips[id]
		if !ok || existing.CompanyID != companyID || existing.Status != payroll.SlipStatusGenerated {
			err = payroll.ErrSlipAlreadyPaid
			return
		}
		method := info.Method
		existing.PaymentMethod = &method
		if info.Reference != "" {
			ref := info.Reference
			existing.PaymentReference = &ref
		}
		existing.Status = payroll.SlipStatusPaid
		existing.PaidAt = &paidAt
		existing.UpdatedAt = r.s.now()
		d.slips[id] = existing
		s = joinEmployee(d, existing)
	})
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	return s, nil
}

func employeeCode(s payroll.SalarySlip) string {
	if s.EmployeeCode == nil {
		return ""
	}
	return *s.EmployeeCode
}
