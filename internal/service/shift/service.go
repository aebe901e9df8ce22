package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type ShiftServiceImpl struct {
	tx             database.Transactor
	shiftRepo      shift.ShiftRepository
	assignmentRepo shift.AssignmentRepository
	employeeRepo   employee.EmployeeRepository
}

func NewShiftService(
	tx database.Transactor,
	shiftRepo shift.ShiftRepository,
	assignmentRepo shift.AssignmentRepository,
	employeeRepo employee.EmployeeRepository,
) shift.Service {
	return &ShiftServiceImpl{
		tx:             tx,
		shiftRepo:      shiftRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
	}
}

// ResolveShift implements shift.Resolver. A nil shift means none is assigned on date.
func (s *ShiftServiceImpl) ResolveShift(ctx context.Context, employeeID string, date time.Time) (*shift.Shift, error) {
	sh, err := s.assignmentRepo.GetEffectiveShift(ctx, employeeID, daterange.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shift: %w", err)
	}
	return sh, nil
}

func (s *ShiftServiceImpl) CreateShift(ctx context.Context, companyID string, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	start, _ := clock.ParseTimeOfDay(req.StartTime)
	end, _ := clock.ParseTimeOfDay(req.EndTime)

	created, err := s.shiftRepo.Create(ctx, shift.Shift{
		CompanyID:          companyID,
		Name:               req.Name,
		StartTime:          start,
		EndTime:            end,
		OvertimeAfterHours: req.OvertimeAfterHours,
		IsNightShift:       req.IsNightShift,
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	return shift.NewShiftResponse(created), nil
}

func (s *ShiftServiceImpl) UpdateShift(ctx context.Context, companyID string, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	current, err := s.shiftRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.StartTime != nil {
		current.StartTime, _ = clock.ParseTimeOfDay(*req.StartTime)
	}
	if req.EndTime != nil {
		current.EndTime, _ = clock.ParseTimeOfDay(*req.EndTime)
	}
	if req.OvertimeAfterHours != nil {
		current.OvertimeAfterHours = *req.OvertimeAfterHours
	}
	if req.IsNightShift != nil {
		current.IsNightShift = *req.IsNightShift
	}

	// The merged shift must still satisfy the create rules.
	check := shift.CreateShiftRequest{
		Name:               current.Name,
		StartTime:          current.StartTime.String(),
		EndTime:            current.EndTime.String(),
		OvertimeAfterHours: current.OvertimeAfterHours,
		IsNightShift:       current.IsNightShift,
	}
	if err := check.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	updated, err := s.shiftRepo.Update(ctx, current)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(updated), nil
}

func (s *ShiftServiceImpl) GetShift(ctx context.Context, companyID string, id string) (shift.ShiftResponse, error) {
	sh, err := s.shiftRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(sh), nil
}

func (s *ShiftServiceImpl) ListShifts(ctx context.Context, companyID string) ([]shift.ShiftResponse, error) {
	shifts, err := s.shiftRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	resp := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		resp = append(resp, shift.NewShiftResponse(sh))
	}
	return resp, nil
}

func (s *ShiftServiceImpl) AssignShift(ctx context.Context, companyID string, req shift.AssignShiftRequest) (shift.AssignShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.AssignShiftResponse{}, err
	}

	if _, err := s.shiftRepo.GetByID(ctx, req.ShiftID, companyID); err != nil {
		return shift.AssignShiftResponse{}, err
	}

	from, _ := daterange.Parse(req.EffectiveFrom)
	var to *time.Time
	if req.EffectiveTo != nil {
		t, _ := daterange.Parse(*req.EffectiveTo)
		to = &t
	}

	resp := shift.AssignShiftResponse{
		Assigned: []shift.AssignmentResponse{},
		Failed:   []shift.AssignmentFailure{},
	}
	var errs []error
	for _, employeeID := range req.EmployeeIDs {
		var saved shift.Assignment
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
				return err
			}
			var err error
			saved, err = s.assignmentRepo.Upsert(ctx, shift.Assignment{
				EmployeeID:    employeeID,
				ShiftID:       req.ShiftID,
				CompanyID:     companyID,
				EffectiveFrom: from,
				EffectiveTo:   to,
			})
			return err
		})
		if err != nil {
			slog.Warn("shift assignment failed", "company_id", companyID, "employee_id", employeeID, "error", err)
			resp.Failed = append(resp.Failed, shift.AssignmentFailure{EmployeeID: employeeID, Error: err.Error()})
			errs = append(errs, fmt.Errorf("employee %s: %w", employeeID, err))
			continue
		}
		resp.Assigned = append(resp.Assigned, shift.NewAssignmentResponse(saved))
	}

	return resp, errors.Join(errs...)
}

func (s *ShiftServiceImpl) ListAssignments(ctx context.Context, companyID string, employeeID string) ([]shift.AssignmentResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByEmployee(ctx, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}

	resp := make([]shift.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, shift.NewAssignmentResponse(a))
	}
	return resp, nil
}
