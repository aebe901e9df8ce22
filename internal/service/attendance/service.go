package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx           database.Transactor
	clock        clock.Clock
	locations    company.LocationProvider
	workLogRepo  attendance.WorkLogRepository
	employeeRepo employee.EmployeeRepository
	leaveRepo    leave.LeaveRequestRepository
	calendar     calendar.Resolver
	shifts       shift.Resolver
	aggregator   attendance.Aggregator
	metrics      *metrics.Metrics
}

func NewAttendanceService(
	tx database.Transactor,
	clk clock.Clock,
	locations company.LocationProvider,
	workLogRepo attendance.WorkLogRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	cal calendar.Resolver,
	shifts shift.Resolver,
	m *metrics.Metrics,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:           tx,
		clock:        clk,
		locations:    locations,
		workLogRepo:  workLogRepo,
		employeeRepo: employeeRepo,
		leaveRepo:    leaveRepo,
		calendar:     cal,
		shifts:       shifts,
		aggregator:   NewAggregator(cal, workLogRepo, leaveRepo),
		metrics:      m,
	}
}

// today returns the current instant and the tenant-local date.
func (a *AttendanceServiceImpl) today(ctx context.Context, companyID string) (time.Time, time.Time, *time.Location, error) {
	loc, err := a.locations.Location(ctx, companyID)
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	now := a.clock.Now().In(loc)
	return now, daterange.DateOf(now), loc, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, companyID string, employeeID string, cc attendance.ClockContext) (attendance.WorkLogResponse, error) {
	if err := cc.Validate(); err != nil {
		return attendance.WorkLogResponse{}, err
	}

	if _, err := a.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.WorkLogResponse{}, err
	}

	now, today, loc, err := a.today(ctx, companyID)
	if err != nil {
		return attendance.WorkLogResponse{}, err
	}

	var saved attendance.WorkLog
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		logDate, sh, err := a.clockInDay(ctx, employeeID, today, loc, now)
		if err != nil {
			return err
		}

		existing, err := a.workLogRepo.LockEmployeeDay(ctx, employeeID, logDate)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsOpen() {
			return attendance.ErrAlreadyClockedIn
		}

		var w attendance.WorkLog
		if existing != nil {
			// Re-entry keeps the day's first clock-in and reopens the session.
			w = *existing
			w.ClearClockOut()
		} else {
			clockIn := now.UTC()
			w = attendance.WorkLog{
				EmployeeID:  employeeID,
				CompanyID:   companyID,
				LogDate:     logDate,
				ClockIn:     &clockIn,
				LateMinutes: lateMinutes(sh, logDate, loc, now),
			}
		}
		if w.ClockIn == nil {
			clockIn := now.UTC()
			w.ClockIn = &clockIn
			w.LateMinutes = lateMinutes(sh, logDate, loc, now)
		}
		if sh != nil {
			w.ShiftID = &sh.ID
		}
		w.Status = attendance.StatusPresent
		w.Source = attendance.SourceClock
		w.ClockInIP = optionalString(cc.IP)
		w.ClockInLatitude = cc.Latitude
		w.ClockInLongitude = cc.Longitude

		saved, err = a.workLogRepo.Upsert(ctx, w)
		return err
	})
	if err != nil {
		a.metrics.ClockEvent("clock_in", metricResult(err))
		return attendance.WorkLogResponse{}, err
	}

	a.metrics.ClockEvent("clock_in", "ok")
	slog.Info("employee clocked in",
		"company_id", companyID, "employee_id", employeeID,
		"log_date", daterange.Format(saved.LogDate), "late_minutes", saved.LateMinutes)
	return attendance.NewWorkLogResponse(saved, loc), nil
}

// clockInDay picks the employee-day a clock-in at now belongs to. Inside
// yesterday's overnight shift that is yesterday; otherwise today.
func (a *AttendanceServiceImpl) clockInDay(ctx context.Context, employeeID string, today time.Time, loc *time.Location, now time.Time) (time.Time, *shift.Shift, error) {
	yesterday := today.AddDate(0, 0, -1)
	prev, err := a.shifts.ResolveShift(ctx, employeeID, yesterday)
	if err != nil {
		return time.Time{}, nil, err
	}
	if inOvernightShift(prev, yesterday, loc, now) {
		return yesterday, prev, nil
	}

	sh, err := a.shifts.ResolveShift(ctx, employeeID, today)
	if err != nil {
		return time.Time{}, nil, err
	}
	return today, sh, nil
}

// liveSession reports whether an open session is still the employee's
// current one. Sessions from an earlier day count only under an overnight
// shift that has not started again.
func (a *AttendanceServiceImpl) liveSession(ctx context.Context, w *attendance.WorkLog, today time.Time, loc *time.Location, now time.Time) (bool, error) {
	if !w.LogDate.Before(today) {
		return true, nil
	}
	sh, err := a.shifts.ResolveShift(ctx, w.EmployeeID, w.LogDate)
	if err != nil {
		return false, err
	}
	return overnightClosable(sh, w.LogDate, loc, now), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, companyID string, employeeID string, cc attendance.ClockContext) (attendance.WorkLogResponse, error) {
	if err := cc.Validate(); err != nil {
		return attendance.WorkLogResponse{}, err
	}

	if _, err := a.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.WorkLogResponse{}, err
	}

	now, today, loc, err := a.today(ctx, companyID)
	if err != nil {
		return attendance.WorkLogResponse{}, err
	}

	var saved attendance.WorkLog
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.workLogRepo.LockOpenSession(ctx, employeeID, today.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		if open == nil || open.CompanyID != companyID {
			return attendance.ErrNoActiveClockIn
		}
		live, err := a.liveSession(ctx, open, today, loc, now)
		if err != nil {
			return err
		}
		if !live {
			return attendance.ErrNoActiveClockIn
		}

		sh, err := a.shifts.ResolveShift(ctx, employeeID, open.LogDate)
		if err != nil {
			return err
		}

		w := *open
		clockOut := now.UTC()
		w.ClockOut = &clockOut
		f := figuresAtClockOut(sh, w.LogDate, loc, *w.ClockIn, clockOut, w.BreakMinutes)
		w.TotalMinutes = &f.TotalMinutes
		w.EarlyLeaveMinutes = f.EarlyLeaveMinutes
		w.OvertimeMinutes = f.OvertimeMinutes
		w.ClockOutIP = optionalString(cc.IP)
		w.ClockOutLatitude = cc.Latitude
		w.ClockOutLongitude = cc.Longitude

		saved, err = a.workLogRepo.Upsert(ctx, w)
		return err
	})
	if err != nil {
		a.metrics.ClockEvent("clock_out", metricResult(err))
		return attendance.WorkLogResponse{}, err
	}

	a.metrics.ClockEvent("clock_out", "ok")
	slog.Info("employee clocked out",
		"company_id", companyID, "employee_id", employeeID,
		"log_date", daterange.Format(saved.LogDate), "total_minutes", *saved.TotalMinutes)
	return attendance.NewWorkLogResponse(saved, loc), nil
}

// GetCurrentStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetCurrentStatus(ctx context.Context, companyID string, employeeID string) (attendance.CurrentStatusResponse, error) {
	if _, err := a.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.CurrentStatusResponse{}, err
	}

	now, today, loc, err := a.today(ctx, companyID)
	if err != nil {
		return attendance.CurrentStatusResponse{}, err
	}

	resp := attendance.CurrentStatusResponse{
		State:    attendance.StateNotClockedIn,
		Date:     daterange.Format(today),
		Timezone: loc.String(),
	}

	leaves, err := a.leaveRepo.ListApprovedOverlapping(ctx, employeeID, companyID, today, today)
	if err != nil {
		return attendance.CurrentStatusResponse{}, fmt.Errorf("failed to check approved leave: %w", err)
	}
	if len(leaves) > 0 {
		lr := leaves[0]
		resp.State = attendance.StateOnLeave
		resp.Leave = &attendance.LeaveInfo{
			LeaveRequestID: lr.ID,
			LeaveType:      lr.LeaveTypeName,
			Category:       string(lr.Category),
			StartDate:      daterange.Format(lr.StartDate),
			EndDate:        daterange.Format(lr.EndDate),
		}
		resp.Message = "On approved leave today"
		return resp, nil
	}

	w, err := a.workLogRepo.GetOpenSession(ctx, employeeID, today.AddDate(0, 0, -1), companyID)
	if err != nil {
		return attendance.CurrentStatusResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}
	if w != nil {
		live, err := a.liveSession(ctx, w, today, loc, now)
		if err != nil {
			return attendance.CurrentStatusResponse{}, err
		}
		if !live {
			w = nil
		}
	}
	if w == nil {
		if w, err = a.workLogRepo.GetByEmployeeAndDate(ctx, employeeID, today, companyID); err != nil {
			return attendance.CurrentStatusResponse{}, fmt.Errorf("failed to get work log: %w", err)
		}
	}

	shiftDate := today
	if w != nil {
		shiftDate = w.LogDate
		resp.State = w.State()
		wr := attendance.NewWorkLogResponse(*w, loc)
		resp.WorkLog = &wr
	}

	sh, err := a.shifts.ResolveShift(ctx, employeeID, shiftDate)
	if err != nil {
		return attendance.CurrentStatusResponse{}, err
	}
	if sh != nil {
		resp.Shift = &attendance.ShiftInfo{
			ID:           sh.ID,
			Name:         sh.Name,
			StartTime:    sh.StartTime.String(),
			EndTime:      sh.EndTime.String(),
			IsNightShift: sh.IsNightShift,
		}
	}

	switch resp.State {
	case attendance.StateClockedIn:
		resp.Message = "Clocked in"
	case attendance.StateClockedOut:
		resp.Message = "Clocked out for the day"
	case attendance.StateOnLeave:
		resp.Message = "Recorded as on leave"
	default:
		resp.Message = "Not clocked in yet"
		if w != nil && w.Status.ClearsClockTimes() {
			resp.Message = "Recorded as " + string(w.Status)
		}
	}
	return resp, nil
}

// RecordAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordAttendance(ctx context.Context, companyID string, req attendance.RecordAttendanceRequest) (attendance.WorkLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WorkLogResponse{}, err
	}

	loc, err := a.locations.Location(ctx, companyID)
	if err != nil {
		return attendance.WorkLogResponse{}, err
	}

	var saved attendance.WorkLog
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err = a.record(ctx, companyID, req, loc)
		return err
	})
	if err != nil {
		return attendance.WorkLogResponse{}, err
	}

	a.metrics.WorkLogRecorded(string(attendance.SourceManual))
	return attendance.NewWorkLogResponse(saved, loc), nil
}

// record applies a validated manual entry. Must run inside a transaction.
func (a *AttendanceServiceImpl) record(ctx context.Context, companyID string, req attendance.RecordAttendanceRequest, loc *time.Location) (attendance.WorkLog, error) {
	if _, err := a.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return attendance.WorkLog{}, err
	}

	logDate, _ := daterange.Parse(req.LogDate)

	existing, err := a.workLogRepo.LockEmployeeDay(ctx, req.EmployeeID, logDate)
	if err != nil {
		return attendance.WorkLog{}, err
	}

	w := attendance.WorkLog{EmployeeID: req.EmployeeID, CompanyID: companyID, LogDate: logDate}
	if existing != nil {
		if existing.CompanyID != companyID {
			return attendance.WorkLog{}, attendance.ErrWorkLogNotFound
		}
		w = *existing
	}
	w.Status = attendance.Status(req.Status)
	w.Source = attendance.SourceManual
	if req.Note != nil {
		w.Note = req.Note
	}
	if req.BreakMinutes != nil {
		w.BreakMinutes = *req.BreakMinutes
	}

	if w.Status.ClearsClockTimes() {
		w.ClearClockTimes()
		w.ShiftID = nil
	} else {
		sh, err := a.shifts.ResolveShift(ctx, req.EmployeeID, logDate)
		if err != nil {
			return attendance.WorkLog{}, err
		}
		if sh != nil {
			w.ShiftID = &sh.ID
		}

		if req.ClockIn != nil {
			tod, _ := clock.ParseTimeOfDay(*req.ClockIn)
			in := anchorClockIn(tod, sh, logDate, loc)
			w.ClockIn = &in
		}
		if req.ClockOut != nil {
			if w.ClockIn == nil {
				return attendance.WorkLog{}, attendance.ErrClockOutWithoutClockIn
			}
			tod, _ := clock.ParseTimeOfDay(*req.ClockOut)
			out := anchorClockOut(tod, logDate, loc, *w.ClockIn)
			w.ClockOut = &out
		}
		if w.ClockIn != nil && w.ClockOut != nil && w.ClockOut.Before(*w.ClockIn) {
			// A new clock-in landed after the stored clock-out.
			w.ClearClockOut()
		}

		if req.ClockIn != nil || req.ClockOut != nil || req.BreakMinutes != nil {
			applyFigures(&w, sh, loc)
		}
	}

	if req.LateMinutes != nil {
		w.LateMinutes = *req.LateMinutes
	}
	if req.EarlyLeaveMinutes != nil {
		w.EarlyLeaveMinutes = *req.EarlyLeaveMinutes
	}
	if req.OvertimeMinutes != nil {
		w.OvertimeMinutes = *req.OvertimeMinutes
	}

	return a.workLogRepo.Upsert(ctx, w)
}

// BulkRecordAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) BulkRecordAttendance(ctx context.Context, companyID string, reqs []attendance.RecordAttendanceRequest) (attendance.BulkRecordResponse, error) {
	loc, err := a.locations.Location(ctx, companyID)
	if err != nil {
		return attendance.BulkRecordResponse{}, err
	}

	resp := attendance.BulkRecordResponse{Failed: []attendance.BulkRecordFailure{}}
	var errs []error
	for i, req := range reqs {
		err := req.Validate()
		if err == nil {
			err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
				_, err := a.record(ctx, companyID, req, loc)
				return err
			})
		}
		if err != nil {
			resp.Failed = append(resp.Failed, attendance.BulkRecordFailure{
				Index:      i,
				EmployeeID: req.EmployeeID,
				LogDate:    req.LogDate,
				Error:      err.Error(),
			})
			errs = append(errs, fmt.Errorf("record %d (employee %s, %s): %w", i, req.EmployeeID, req.LogDate, err))
			continue
		}
		resp.Recorded++
		a.metrics.WorkLogRecorded(string(attendance.SourceManual))
	}

	if len(errs) > 0 {
		slog.Warn("bulk attendance finished with failures",
			"company_id", companyID, "recorded", resp.Recorded, "failed", len(errs))
	}
	return resp, errors.Join(errs...)
}

// DeleteWorkLog implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteWorkLog(ctx context.Context, companyID string, employeeID string, logDate time.Time) error {
	logDate = daterange.DateOf(logDate)
	return a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.workLogRepo.LockEmployeeDay(ctx, employeeID, logDate); err != nil {
			return err
		}
		return a.workLogRepo.Delete(ctx, employeeID, logDate, companyID)
	})
}

// GetMonthlyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlyAttendance(ctx context.Context, companyID string, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	if !validator.IsValidPeriod(month, year) {
		return attendance.MonthlySummary{}, validator.ValidationErrors{
			{Field: "period", Message: "month must be 1-12 and year 1900-9999"},
		}
	}
	if _, err := a.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.MonthlySummary{}, err
	}
	return a.aggregator.Aggregate(ctx, companyID, employeeID, month, year)
}

// MarkAbsentees implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAbsentees(ctx context.Context, companyID string, date time.Time) (int, error) {
	date = daterange.DateOf(date)

	wd, err := a.calendar.ResolveWorkingDays(ctx, companyID, date, date)
	if err != nil {
		return 0, err
	}
	if !wd.IsWorkingDate(date) {
		return 0, nil
	}

	employees, err := a.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	marked := 0
	var errs []error
	for _, emp := range employees {
		if !emp.HireDate.IsZero() && daterange.DateOf(emp.HireDate).After(date) {
			continue
		}

		leaves, err := a.leaveRepo.ListApprovedOverlapping(ctx, emp.ID, companyID, date, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		if len(leaves) > 0 {
			continue
		}

		var inserted bool
		err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := a.workLogRepo.LockEmployeeDay(ctx, emp.ID, date); err != nil {
				return err
			}
			var err error
			inserted, err = a.workLogRepo.InsertIfMissing(ctx, attendance.WorkLog{
				EmployeeID: emp.ID,
				CompanyID:  companyID,
				LogDate:    date,
				Status:     attendance.StatusAbsent,
				Source:     attendance.SourceSystem,
			})
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		if inserted {
			marked++
		}
	}

	a.metrics.AbsencesMarked(marked)
	slog.Info("absentees marked", "company_id", companyID, "date", daterange.Format(date), "marked", marked)
	return marked, errors.Join(errs...)
}

func metricResult(err error) string {
	switch {
	case errors.Is(err, attendance.ErrAlreadyClockedIn), errors.Is(err, attendance.ErrNoActiveClockIn):
		return "rejected"
	default:
		return "error"
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
