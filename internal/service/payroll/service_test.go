package payroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
	calendarsvc "github.com/cmlabs-hris/workforce-engine/internal/service/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	clock     *clock.Mock
	svc       payroll.PayrollService
	companyID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	c := store.AddCompany(company.Company{Name: "Acme"})
	clk := clock.NewMock(time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC))

	cal := calendarsvc.NewCalendarService(store, store.Calendars(), nil)
	agg := attendancesvc.NewAggregator(cal, store.WorkLogs(), store.LeaveRequests())

	return &fixture{
		store:     store,
		clock:     clk,
		svc:       NewPayrollService(store, clk, store.Payroll(), store.Employees(), agg, nil, 2),
		companyID: c.ID,
	}
}

func (f *fixture) addEmployee(code string, base *decimal.Decimal) employee.Employee {
	return f.store.AddEmployee(employee.Employee{CompanyID: f.companyID, EmployeeCode: code, FullName: "Employee " + code, BaseSalary: base})
}

// seedApril writes a work log for every weekday of April 2025, present unless overridden.
func (f *fixture) seedApril(t *testing.T, employeeID string, overrides map[string]attendance.Status) {
	t.Helper()
	ctx := context.Background()
	start, end, err := daterange.MonthBounds(4, 2025)
	require.NoError(t, err)
	for _, d := range daterange.Days(start, end) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		status := attendance.StatusPresent
		if s, ok := overrides[daterange.Format(d)]; ok {
			status = s
		}
		_, err := f.store.WorkLogs().Upsert(ctx, attendance.WorkLog{
			EmployeeID: employeeID, CompanyID: f.companyID, LogDate: d, Status: status, Source: attendance.SourceManual,
		})
		require.NoError(t, err)
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGenerateSalarySlipEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee("E001", decPtr("3000"))
	f.seedApril(t, emp.ID, map[string]attendance.Status{
		"2025-04-07": attendance.StatusAbsent,
		"2025-04-08": attendance.StatusAbsent,
		"2025-04-15": attendance.StatusHalfDay,
	})

	slip, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)

	assert.Equal(t, 22, slip.TotalWorkingDays)
	assert.Equal(t, 2, slip.AbsentDays)
	assert.Equal(t, 1, slip.HalfDays)
	assert.Equal(t, "2.5", slip.LOPDays.String())
	assert.Equal(t, "136.36", slip.PerDaySalary.String())
	assert.Equal(t, "340.91", slip.LOPAmount.String())
	assert.Equal(t, "2659.09", slip.NetPayable.String())
	assert.Equal(t, string(payroll.SlipStatusGenerated), slip.Status)
	assert.Equal(t, 4, slip.Month)
	assert.Equal(t, 2025, slip.Year)
	require.NotNil(t, slip.EmployeeCode)
	assert.Equal(t, "E001", *slip.EmployeeCode)

	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "Loss of Pay (2.5 days)", slip.Deductions[0].Name)
}

func TestGenerateSalarySlipIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee("E001", decPtr("3000"))
	f.seedApril(t, emp.ID, nil)

	first, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)
	assert.True(t, first.LOPDays.IsZero())

	// New attendance does not change a stored slip until it is recomputed.
	f.seedApril(t, emp.ID, map[string]attendance.Status{"2025-04-01": attendance.StatusAbsent})

	second, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.LOPDays.IsZero())
	assert.True(t, first.NetPayable.Equal(second.NetPayable))

	recomputed, err := f.svc.RecomputeSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, first.ID, recomputed.ID)
	assert.Equal(t, "1", recomputed.LOPDays.String())

	slips, err := f.svc.ListSalarySlips(ctx, f.companyID, 4, 2025)
	require.NoError(t, err)
	assert.Len(t, slips, 1)
}

func TestGenerateSalarySlipConcurrentCallsShareOneSlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee("E001", decPtr("3000"))
	f.seedApril(t, emp.ID, nil)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slip, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
			assert.NoError(t, err)
			ids[i] = slip.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	slips, err := f.svc.ListSalarySlips(ctx, f.companyID, 4, 2025)
	require.NoError(t, err)
	assert.Len(t, slips, 1)
}

func TestGenerateSalarySlipErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	noSalary := f.addEmployee("E001", nil)

	_, err := f.svc.GenerateSalarySlip(ctx, f.companyID, noSalary.ID, 4, 2025)
	assert.ErrorIs(t, err, payroll.ErrEmployeeHasNoBaseSalary)

	_, err = f.svc.GenerateSalarySlip(ctx, f.companyID, uuid.NewString(), 4, 2025)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.GenerateSalarySlip(ctx, f.companyID, noSalary.ID, 0, 2025)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	_, err = f.svc.ListSalarySlips(ctx, f.companyID, 13, 2025)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestMarkSlipPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee("E001", decPtr("3000"))
	f.seedApril(t, emp.ID, nil)

	slip, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)

	paid, err := f.svc.MarkSlipPaid(ctx, f.companyID, slip.ID, payroll.PaymentInfo{Method: "bank_transfer", Reference: "TRX-1"})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.SlipStatusPaid), paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, f.clock.Now().Equal(*paid.PaidAt))
	assert.Equal(t, "TRX-1", *paid.PaymentReference)

	_, err = f.svc.MarkSlipPaid(ctx, f.companyID, slip.ID, payroll.PaymentInfo{Method: "cash"})
	assert.ErrorIs(t, err, payroll.ErrSlipAlreadyPaid)

	_, err = f.svc.RecomputeSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	assert.ErrorIs(t, err, payroll.ErrSlipAlreadyPaid)

	// Get-or-create still returns the paid slip.
	again, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.SlipStatusPaid), again.Status)

	_, err = f.svc.MarkSlipPaid(ctx, uuid.NewString(), slip.ID, payroll.PaymentInfo{Method: "cash"})
	assert.ErrorIs(t, err, payroll.ErrSalarySlipNotFound)

	_, err = f.svc.MarkSlipPaid(ctx, f.companyID, slip.ID, payroll.PaymentInfo{})
	assert.Error(t, err)
}

func TestBulkGenerateAndPay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addEmployee("E001", decPtr("3000"))
	bob := f.addEmployee("E002", decPtr("4400"))
	carol := f.addEmployee("E003", nil)
	f.seedApril(t, alice.ID, nil)
	f.seedApril(t, bob.ID, map[string]attendance.Status{"2025-04-30": attendance.StatusAbsent})

	resp, err := f.svc.BulkGenerateSalarySlips(ctx, f.companyID, payroll.GenerateSlipsRequest{Month: 4, Year: 2025})
	require.NoError(t, err)
	require.Len(t, resp.Slips, 2)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, carol.ID, resp.Failures[0].ID)
	assert.Equal(t, "200", resp.Slips[1].LOPAmount.String())

	unknown := uuid.NewString()
	paid, err := f.svc.BulkMarkSlipsPaid(ctx, f.companyID, payroll.MarkPaidRequest{
		SlipIDs:     []string{resp.Slips[0].ID, unknown, resp.Slips[1].ID},
		PaymentInfo: payroll.PaymentInfo{Method: "bank_transfer"},
	})
	require.NoError(t, err)
	assert.Len(t, paid.Paid, 2)
	require.Len(t, paid.Failures, 1)
	assert.Equal(t, unknown, paid.Failures[0].ID)

	// Filtering by employee regenerates nothing new.
	again, err := f.svc.BulkGenerateSalarySlips(ctx, f.companyID, payroll.GenerateSlipsRequest{Month: 4, Year: 2025, EmployeeIDs: []string{alice.ID}})
	require.NoError(t, err)
	require.Len(t, again.Slips, 1)
	assert.Equal(t, string(payroll.SlipStatusPaid), again.Slips[0].Status)
}

func TestEmployeeComponentsFlowIntoSlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee("E001", decPtr("3000"))
	f.seedApril(t, emp.ID, nil)

	transport, err := f.svc.CreateComponent(ctx, f.companyID, payroll.CreatePayrollComponentRequest{Name: "Transport", Type: "benefit"})
	require.NoError(t, err)
	pension, err := f.svc.CreateComponent(ctx, f.companyID, payroll.CreatePayrollComponentRequest{Name: "Pension", Type: "deduction"})
	require.NoError(t, err)
	expired, err := f.svc.CreateComponent(ctx, f.companyID, payroll.CreatePayrollComponentRequest{Name: "Relocation", Type: "benefit"})
	require.NoError(t, err)

	_, err = f.svc.CreateComponent(ctx, f.companyID, payroll.CreatePayrollComponentRequest{Name: "Transport", Type: "benefit"})
	assert.ErrorIs(t, err, payroll.ErrPayrollComponentNameExists)

	endDate := "2025-03-31"
	for _, req := range []payroll.AssignComponentRequest{
		{EmployeeID: emp.ID, PayrollComponentID: transport.ID, Amount: decimal.NewFromInt(200), EffectiveDate: "2025-01-01"},
		{EmployeeID: emp.ID, PayrollComponentID: pension.ID, Amount: decimal.NewFromInt(150), EffectiveDate: "2025-04-15"},
		{EmployeeID: emp.ID, PayrollComponentID: expired.ID, Amount: decimal.NewFromInt(999), EffectiveDate: "2025-01-01", EndDate: &endDate},
	} {
		_, err := f.svc.AssignComponent(ctx, f.companyID, req)
		require.NoError(t, err)
	}

	list, err := f.svc.ListEmployeeComponents(ctx, f.companyID, emp.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	slip, err := f.svc.GenerateSalarySlip(ctx, f.companyID, emp.ID, 4, 2025)
	require.NoError(t, err)
	require.Len(t, slip.Earnings, 1)
	assert.Equal(t, "Transport", slip.Earnings[0].Name)
	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "Pension", slip.Deductions[0].Name)
	assert.Equal(t, "3200", slip.TotalEarnings.String())
	assert.Equal(t, "3050", slip.NetPayable.String())

	require.NoError(t, f.svc.RemoveEmployeeComponent(ctx, f.companyID, emp.ID, list[0].ID))
	assert.ErrorIs(t, f.svc.RemoveEmployeeComponent(ctx, f.companyID, emp.ID, list[0].ID), payroll.ErrEmployeeComponentNotFound)

	_, err = f.svc.AssignComponent(ctx, uuid.NewString(), payroll.AssignComponentRequest{
		EmployeeID: emp.ID, PayrollComponentID: transport.ID, Amount: decimal.NewFromInt(1), EffectiveDate: "2025-01-01",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
