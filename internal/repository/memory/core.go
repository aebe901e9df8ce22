package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type companyRepo struct{ s *Store }

func (r companyRepo) GetByID(_ context.Context, id string) (company.Company, error) {
	var c company.Company
	var ok bool
	r.s.read(func(d *state) { c, ok = d.companies[id] })
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	var e employee.Employee
	var ok bool
	r.s.read(func(d *state) { e, ok = d.employees[id] })
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepo) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	r.s.read(func(d *state) {
		for _, e := range d.employees {
			if e.CompanyID == companyID && e.IsActive() {
				out = append(out, e)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r employeeRepo) ListActiveCompanyIDs(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	r.s.read(func(d *state) {
		for _, e := range d.employees {
			if e.IsActive() && !seen[e.CompanyID] {
				seen[e.CompanyID] = true
				out = append(out, e.CompanyID)
			}
		}
	})
	sort.Strings(out)
	return out, nil
}

type leaveRepo struct{ s *Store }

func (r leaveRepo) ListApprovedOverlapping(_ context.Context, employeeID string, companyID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	window := daterange.New(start, end)
	var out []leave.LeaveRequest
	r.s.read(func(d *state) {
		if e, ok := d.employees[employeeID]; !ok || e.CompanyID != companyID {
			return
		}
		for _, lr := range d.leaveRequests {
			if lr.EmployeeID != employeeID || lr.Status != leave.LeaveRequestStatusApproved {
				continue
			}
			if !lr.Range().Overlaps(window) {
				continue
			}
			if lt, ok := d.leaveTypes[lr.LeaveTypeID]; ok {
				lr.LeaveTypeName = lt.Name
				lr.Category = lt.Category
			}
			out = append(out, lr)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
