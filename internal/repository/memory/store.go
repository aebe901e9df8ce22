// Package memory implements the repository interfaces over in-process maps.
// Transactions are serialized and roll back by restoring a snapshot, which is
// enough for service tests and local tooling.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/google/uuid"
)

type state struct {
	companies          map[string]company.Company
	employees          map[string]employee.Employee
	leaveTypes         map[string]leaveType
	leaveRequests      map[string]leave.LeaveRequest
	calendars          map[string]calendar.Configuration
	shifts             map[string]shift.Shift
	assignments        map[string]shift.Assignment
	workLogs           map[string]attendance.WorkLog
	components         map[string]payroll.PayrollComponent
	employeeComponents map[string]payroll.EmployeePayrollComponent
	slips              map[string]payroll.SalarySlip
}

type leaveType struct {
	ID        string
	CompanyID string
	Name      string
	Category  leave.Category
}

func newState() *state {
	return &state{
		companies:          map[string]company.Company{},
		employees:          map[string]employee.Employee{},
		leaveTypes:         map[string]leaveType{},
		leaveRequests:      map[string]leave.LeaveRequest{},
		calendars:          map[string]calendar.Configuration{},
		shifts:             map[string]shift.Shift{},
		assignments:        map[string]shift.Assignment{},
		workLogs:           map[string]attendance.WorkLog{},
		components:         map[string]payroll.PayrollComponent{},
		employeeComponents: map[string]payroll.EmployeePayrollComponent{},
		slips:              map[string]payroll.SalarySlip{},
	}
}

func (s *state) clone() *state {
	return &state{
		companies:          maps.Clone(s.companies),
		employees:          maps.Clone(s.employees),
		leaveTypes:         maps.Clone(s.leaveTypes),
		leaveRequests:      maps.Clone(s.leaveRequests),
		calendars:          maps.Clone(s.calendars),
		shifts:             maps.Clone(s.shifts),
		assignments:        maps.Clone(s.assignments),
		workLogs:           maps.Clone(s.workLogs),
		components:         maps.Clone(s.components),
		employeeComponents: maps.Clone(s.employeeComponents),
		slips:              maps.Clone(s.slips),
	}
}

type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	data   *state
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

type txKey struct{}

// WithinTransaction implements database.Transactor. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	snapshot := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.dataMu.Lock()
		s.data = snapshot
		s.dataMu.Unlock()
		return err
	}
	return nil
}

func (s *Store) read(fn func(d *state)) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state)) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	fn(s.data)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========== SEEDING ==========

// AddCompany stores c, assigning an id when empty.
func (s *Store) AddCompany(c company.Company) company.Company {
	if c.ID == "" {
		c.ID = newID()
	}
	s.write(func(d *state) { d.companies[c.ID] = c })
	return c
}

// AddEmployee stores e as active unless a status is set, assigning an id when empty.
func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	s.write(func(d *state) { d.employees[e.ID] = e })
	return e
}

// AddLeaveType registers a leave type of a tenant.
func (s *Store) AddLeaveType(companyID, name string, category leave.Category) string {
	id := newID()
	s.write(func(d *state) {
		d.leaveTypes[id] = leaveType{ID: id, CompanyID: companyID, Name: name, Category: category}
	})
	return id
}

// AddLeaveRequest stores a request; its type name and category are joined on read.
func (s *Store) AddLeaveRequest(lr leave.LeaveRequest) leave.LeaveRequest {
	if lr.ID == "" {
		lr.ID = newID()
	}
	s.write(func(d *state) { d.leaveRequests[lr.ID] = lr })
	return lr
}

// ========== REPOSITORIES ==========

func (s *Store) Companies() company.CompanyRepository         { return companyRepo{s} }
func (s *Store) Employees() employee.EmployeeRepository       { return employeeRepo{s} }
func (s *Store) LeaveRequests() leave.LeaveRequestRepository  { return leaveRepo{s} }
func (s *Store) Calendars() calendar.Repository               { return calendarRepo{s} }
func (s *Store) Shifts() shift.ShiftRepository                { return shiftRepo{s} }
func (s *Store) ShiftAssignments() shift.AssignmentRepository { return assignmentRepo{s} }
func (s *Store) WorkLogs() attendance.WorkLogRepository       { return workLogRepo{s} }
func (s *Store) Payroll() payroll.PayrollRepository           { return payrollRepo{s} }
