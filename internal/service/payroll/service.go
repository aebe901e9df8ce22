package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const defaultBulkConcurrency = 4

type PayrollServiceImpl struct {
	tx              database.Transactor
	clock           clock.Clock
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	aggregator      attendance.Aggregator
	metrics         *metrics.Metrics
	bulkConcurrency int
}

func NewPayrollService(
	tx database.Transactor,
	clk clock.Clock,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	aggregator attendance.Aggregator,
	m *metrics.Metrics,
	bulkConcurrency int,
) payroll.PayrollService {
	if bulkConcurrency <= 0 {
		bulkConcurrency = defaultBulkConcurrency
	}
	return &PayrollServiceImpl{
		tx:              tx,
		clock:           clk,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		aggregator:      aggregator,
		metrics:         m,
		bulkConcurrency: bulkConcurrency,
	}
}

// ========== COMPONENTS ==========

func (s *PayrollServiceImpl) CreateComponent(ctx context.Context, companyID string, req payroll.CreatePayrollComponentRequest) (payroll.PayrollComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollComponentResponse{}, err
	}

	created, err := s.payrollRepo.CreateComponent(ctx, payroll.PayrollComponent{
		CompanyID:   companyID,
		Name:        req.Name,
		Type:        payroll.ComponentType(req.Type),
		Description: req.Description,
		IsActive:    true,
	})
	if err != nil {
		return payroll.PayrollComponentResponse{}, err
	}

	return payroll.NewPayrollComponentResponse(created), nil
}

func (s *PayrollServiceImpl) ListComponents(ctx context.Context, companyID string) ([]payroll.PayrollComponentResponse, error) {
	components, err := s.payrollRepo.GetComponentsByCompanyID(ctx, companyID, false)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.PayrollComponentResponse, 0, len(components))
	for _, c := range components {
		resp = append(resp, payroll.NewPayrollComponentResponse(c))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) AssignComponent(ctx context.Context, companyID string, req payroll.AssignComponentRequest) (payroll.EmployeeComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.EmployeeComponentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return payroll.EmployeeComponentResponse{}, err
	}

	effective, _ := daterange.Parse(req.EffectiveDate)
	var end *time.Time
	if req.EndDate != nil {
		t, _ := daterange.Parse(*req.EndDate)
		end = &t
	}

	assigned, err := s.payrollRepo.AssignComponentToEmployee(ctx, payroll.EmployeePayrollComponent{
		EmployeeID:         req.EmployeeID,
		PayrollComponentID: req.PayrollComponentID,
		Amount:             req.Amount,
		EffectiveDate:      effective,
		EndDate:            end,
	}, companyID)
	if err != nil {
		return payroll.EmployeeComponentResponse{}, err
	}

	return payroll.NewEmployeeComponentResponse(assigned), nil
}

func (s *PayrollServiceImpl) ListEmployeeComponents(ctx context.Context, companyID string, employeeID string) ([]payroll.EmployeeComponentResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return nil, err
	}

	assignments, err := s.payrollRepo.GetEmployeeComponents(ctx, employeeID, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.EmployeeComponentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, payroll.NewEmployeeComponentResponse(a))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) RemoveEmployeeComponent(ctx context.Context, companyID string, employeeID string, id string) error {
	return s.payrollRepo.RemoveEmployeeComponent(ctx, id, employeeID, companyID)
}

// ========== SALARY SLIPS ==========

func (s *PayrollServiceImpl) GenerateSalarySlip(ctx context.Context, companyID string, employeeID string, month, year int) (payroll.SalarySlipResponse, error) {
	slip, err := s.generate(ctx, companyID, employeeID, month, year, false)
	if err != nil {
		return payroll.SalarySlipResponse{}, err
	}
	return payroll.NewSalarySlipResponse(slip), nil
}

func (s *PayrollServiceImpl) RecomputeSalarySlip(ctx context.Context, companyID string, employeeID string, month, year int) (payroll.SalarySlipResponse, error) {
	slip, err := s.generate(ctx, companyID, employeeID, month, year, true)
	if err != nil {
		return payroll.SalarySlipResponse{}, err
	}
	return payroll.NewSalarySlipResponse(slip), nil
}

// generate returns the stored slip of the period, computing it when missing.
// With recompute set, a generated slip is overwritten with fresh figures.
func (s *PayrollServiceImpl) generate(ctx context.Context, companyID, employeeID string, month, year int, recompute bool) (payroll.SalarySlip, error) {
	start, end, err := daterange.MonthBounds(month, year)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("%w: %v", payroll.ErrInvalidPeriod, err)
	}

	var slip payroll.SalarySlip
	result := "existing"
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
		if err != nil {
			return err
		}

		if err := s.payrollRepo.LockEmployeePeriod(ctx, employeeID, start); err != nil {
			return err
		}

		existing, err := s.payrollRepo.GetSlipByEmployeePeriod(ctx, employeeID, start, companyID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !recompute {
				slip = *existing
				return nil
			}
			if existing.Status == payroll.SlipStatusPaid {
				return payroll.ErrSlipAlreadyPaid
			}
		}

		if emp.BaseSalary == nil {
			return payroll.ErrEmployeeHasNoBaseSalary
		}

		summary, err := s.aggregator.Aggregate(ctx, companyID, employeeID, month, year)
		if err != nil {
			return fmt.Errorf("failed to aggregate attendance: %w", err)
		}

		components, err := s.payrollRepo.GetActiveEmployeeComponents(ctx, employeeID, companyID, start, end)
		if err != nil {
			return err
		}

		computed := Calculate(employeeID, companyID, start, *emp.BaseSalary, summary, components)

		if existing != nil {
			computed.ID = existing.ID
			slip, err = s.payrollRepo.UpdateSlipFigures(ctx, computed)
			result = "recomputed"
			return err
		}

		var created bool
		slip, created, err = s.payrollRepo.CreateSlip(ctx, computed)
		if created {
			result = "created"
		}
		return err
	})
	if err != nil {
		s.metrics.SalarySlip("error")
		return payroll.SalarySlip{}, err
	}

	s.metrics.SalarySlip(result)
	if result != "existing" {
		slog.Info("salary slip "+result,
			"company_id", companyID, "employee_id", employeeID,
			"period", daterange.Format(start), "net_payable", slip.NetPayable.String())
	}
	return slip, nil
}

func (s *PayrollServiceImpl) BulkGenerateSalarySlips(ctx context.Context, companyID string, req payroll.GenerateSlipsRequest) (payroll.BulkGenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkGenerateResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
		if err != nil {
			return payroll.BulkGenerateResponse{}, fmt.Errorf("failed to list active employees: %w", err)
		}
		for _, e := range employees {
			employeeIDs = append(employeeIDs, e.ID)
		}
	}

	slips := make([]*payroll.SalarySlip, len(employeeIDs))
	errs := make([]error, len(employeeIDs))

	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, employeeID := range employeeIDs {
		g.Go(func() error {
			slip, err := s.generate(ctx, companyID, employeeID, req.Month, req.Year, false)
			if err != nil {
				errs[i] = err
				return nil
			}
			slips[i] = &slip
			return nil
		})
	}
	_ = g.Wait()

	resp := payroll.BulkGenerateResponse{
		Slips:    []payroll.SalarySlipResponse{},
		Failures: []payroll.BulkFailure{},
	}
	for i, employeeID := range employeeIDs {
		if errs[i] != nil {
			resp.Failures = append(resp.Failures, payroll.BulkFailure{ID: employeeID, Error: errs[i].Error()})
			continue
		}
		resp.Slips = append(resp.Slips, payroll.NewSalarySlipResponse(*slips[i]))
	}

	slog.Info("bulk salary slip generation finished",
		"company_id", companyID, "month", req.Month, "year", req.Year,
		"generated", len(resp.Slips), "failed", len(resp.Failures))
	return resp, nil
}

func (s *PayrollServiceImpl) GetSalarySlip(ctx context.Context, companyID string, id string) (payroll.SalarySlipResponse, error) {
	slip, err := s.payrollRepo.GetSlipByID(ctx, id, companyID, false)
	if err != nil {
		return payroll.SalarySlipResponse{}, err
	}
	return payroll.NewSalarySlipResponse(slip), nil
}

func (s *PayrollServiceImpl) ListSalarySlips(ctx context.Context, companyID string, month, year int) ([]payroll.SalarySlipResponse, error) {
	if !validator.IsValidPeriod(month, year) {
		return nil, payroll.ErrInvalidPeriod
	}
	period, _, _ := daterange.MonthBounds(month, year)

	slips, err := s.payrollRepo.ListSlipsByPeriod(ctx, companyID, period)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.SalarySlipResponse, 0, len(slips))
	for _, slip := range slips {
		resp = append(resp, payroll.NewSalarySlipResponse(slip))
	}
	return resp, nil
}

// ========== PAYMENT ==========

func (s *PayrollServiceImpl) MarkSlipPaid(ctx context.Context, companyID string, slipID string, info payroll.PaymentInfo) (payroll.SalarySlipResponse, error) {
	if validator.IsEmpty(info.Method) {
		return payroll.SalarySlipResponse{}, validator.ValidationErrors{
			{Field: "payment_method", Message: "is required"},
		}
	}

	var paid payroll.SalarySlip
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		slip, err := s.payrollRepo.GetSlipByID(ctx, slipID, companyID, true)
		if err != nil {
			return err
		}
		if slip.Status != payroll.SlipStatusGenerated {
			return payroll.ErrSlipAlreadyPaid
		}

		paid, err = s.payrollRepo.MarkSlipPaid(ctx, slipID, companyID, info, s.clock.Now().UTC())
		return err
	})
	if err != nil {
		return payroll.SalarySlipResponse{}, err
	}

	s.metrics.SlipPaid()
	slog.Info("salary slip paid", "company_id", companyID, "slip_id", slipID, "method", info.Method)
	return payroll.NewSalarySlipResponse(paid), nil
}

func (s *PayrollServiceImpl) BulkMarkSlipsPaid(ctx context.Context, companyID string, req payroll.MarkPaidRequest) (payroll.BulkMarkPaidResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkMarkPaidResponse{}, err
	}

	resp := payroll.BulkMarkPaidResponse{
		Paid:     []payroll.SalarySlipResponse{},
		Failures: []payroll.BulkFailure{},
	}
	for _, id := range req.SlipIDs {
		slip, err := s.MarkSlipPaid(ctx, companyID, id, req.PaymentInfo)
		if err != nil {
			if !errors.Is(err, payroll.ErrSlipAlreadyPaid) && !errors.Is(err, payroll.ErrSalarySlipNotFound) {
				slog.Error("failed to mark salary slip paid", "company_id", companyID, "slip_id", id, "error", err)
			}
			resp.Failures = append(resp.Failures, payroll.BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		resp.Paid = append(resp.Paid, slip)
	}
	return resp, nil
}
