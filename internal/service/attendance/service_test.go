package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	calendarsvc "github.com/cmlabs-hris/workforce-engine/internal/service/calendar"
	companysvc "github.com/cmlabs-hris/workforce-engine/internal/service/company"
	shiftsvc "github.com/cmlabs-hris/workforce-engine/internal/service/shift"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	clock     *clock.Mock
	loc       *time.Location
	svc       attendance.AttendanceService
	shifts    shift.Service
	companyID string
	emp       employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	store := memory.NewStore()
	tz := loc.String()
	c := store.AddCompany(company.Company{Name: "Acme", Timezone: &tz})
	emp := store.AddEmployee(employee.Employee{CompanyID: c.ID, EmployeeCode: "E001", FullName: "Alice"})

	clk := clock.NewMock(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))
	cal := calendarsvc.NewCalendarService(store, store.Calendars(), nil)
	shifts := shiftsvc.NewShiftService(store, store.Shifts(), store.ShiftAssignments(), store.Employees())
	locations := companysvc.NewLocationService(store.Companies(), time.UTC)

	return &fixture{
		store:     store,
		clock:     clk,
		loc:       loc,
		svc:       NewAttendanceService(store, clk, locations, store.WorkLogs(), store.Employees(), store.LeaveRequests(), cal, shifts, nil),
		shifts:    shifts,
		companyID: c.ID,
		emp:       emp,
	}
}

func (f *fixture) addEmployee(code string) employee.Employee {
	return f.store.AddEmployee(employee.Employee{CompanyID: f.companyID, EmployeeCode: code, FullName: code})
}

func (f *fixture) assignShift(t *testing.T, req shift.CreateShiftRequest, employeeIDs ...string) shift.ShiftResponse {
	t.Helper()
	ctx := context.Background()
	sh, err := f.shifts.CreateShift(ctx, f.companyID, req)
	require.NoError(t, err)
	_, err = f.shifts.AssignShift(ctx, f.companyID, shift.AssignShiftRequest{
		ShiftID: sh.ID, EmployeeIDs: employeeIDs, EffectiveFrom: "2025-01-01",
	})
	require.NoError(t, err)
	return sh
}

func (f *fixture) at(day, hour, minute, second int) time.Time {
	return time.Date(2025, 3, day, hour, minute, second, 0, f.loc)
}

func dayShift() shift.CreateShiftRequest {
	return shift.CreateShiftRequest{Name: "Day", StartTime: "09:00", EndTime: "17:00"}
}

func nightShift() shift.CreateShiftRequest {
	return shift.CreateShiftRequest{Name: "Night", StartTime: "22:00", EndTime: "06:00", IsNightShift: true}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestClockInLatenessBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	onTime := f.emp
	oneMinute := f.addEmployee("E002")
	almost := f.addEmployee("E003")
	f.assignShift(t, dayShift(), onTime.ID, oneMinute.ID, almost.ID)

	cases := []struct {
		emp  employee.Employee
		at   time.Time
		want int
	}{
		{onTime, f.at(10, 9, 0, 0), 0},
		{almost, f.at(10, 9, 0, 59), 0},
		{oneMinute, f.at(10, 9, 1, 0), 1},
	}
	for _, c := range cases {
		f.clock.Set(c.at)
		resp, err := f.svc.ClockIn(ctx, f.companyID, c.emp.ID, attendance.ClockContext{})
		require.NoError(t, err)
		assert.Equal(t, c.want, resp.LateMinutes, c.emp.EmployeeCode)
		assert.Equal(t, string(attendance.StatusPresent), resp.Status)
		assert.Equal(t, "2025-03-10", resp.LogDate)
	}
}

func TestClockStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, dayShift(), f.emp.ID)

	lat, long := -6.2, 106.8
	f.clock.Set(f.at(10, 8, 55, 0))
	first, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{IP: "10.0.0.1", Latitude: &lat, Longitude: &long})
	require.NoError(t, err)
	assert.Zero(t, first.LateMinutes)
	require.NotNil(t, first.ShiftID)

	_, err = f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	f.clock.Set(f.at(10, 16, 30, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	require.NotNil(t, out.TotalMinutes)
	assert.Equal(t, 455, *out.TotalMinutes)
	assert.Equal(t, 30, out.EarlyLeaveMinutes)
	assert.Zero(t, out.OvertimeMinutes)

	_, err = f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveClockIn)

	// Re-entry reopens the same row.
	f.clock.Set(f.at(10, 17, 0, 0))
	again, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Nil(t, again.ClockOut)
	assert.Nil(t, again.TotalMinutes)
	assert.Zero(t, again.EarlyLeaveMinutes)
	assert.True(t, first.ClockIn.Equal(*again.ClockIn))

	f.clock.Set(f.at(10, 18, 0, 0))
	final, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, 545, *final.TotalMinutes)
	assert.Equal(t, 60, final.OvertimeMinutes)
}

func TestClockInUnknownEmployee(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), f.companyID, uuid.NewString(), attendance.ClockContext{})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	other := f.store.AddEmployee(employee.Employee{CompanyID: uuid.NewString(), EmployeeCode: "X"})
	_, err = f.svc.ClockIn(context.Background(), f.companyID, other.ID, attendance.ClockContext{})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestNightShiftAcrossMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, nightShift(), f.emp.ID)

	f.clock.Set(f.at(10, 22, 10, 0))
	in, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, 10, in.LateMinutes)

	// Still clocked in after midnight; a new clock-in is rejected.
	f.clock.Set(f.at(11, 1, 0, 0))
	_, err = f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	status, err := f.svc.GetCurrentStatus(ctx, f.companyID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedIn, status.State)
	require.NotNil(t, status.WorkLog)
	assert.Equal(t, "2025-03-10", status.WorkLog.LogDate)

	f.clock.Set(f.at(11, 6, 5, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", out.LogDate)
	require.NotNil(t, out.TotalMinutes)
	assert.Equal(t, 475, *out.TotalMinutes)
	require.NotNil(t, out.TotalHours)
	assert.Equal(t, 7.92, *out.TotalHours)
	assert.Equal(t, 10, out.LateMinutes)
	assert.Equal(t, 5, out.OvertimeMinutes)
	assert.Zero(t, out.EarlyLeaveMinutes)
}

func TestForgottenClockOutOnDayShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, dayShift(), f.emp.ID)

	f.clock.Set(f.at(10, 9, 0, 0))
	stale, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)

	// Next morning the 10th's open row no longer counts.
	f.clock.Set(f.at(11, 8, 0, 0))
	_, err = f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveClockIn)

	status, err := f.svc.GetCurrentStatus(ctx, f.companyID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNotClockedIn, status.State)
	assert.Nil(t, status.WorkLog)

	f.clock.Set(f.at(11, 9, 0, 0))
	in, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, in.ID)
	assert.Equal(t, "2025-03-11", in.LogDate)
	assert.Zero(t, in.LateMinutes)

	f.clock.Set(f.at(11, 17, 0, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", out.LogDate)
	assert.Equal(t, 480, *out.TotalMinutes)
	assert.Zero(t, out.OvertimeMinutes)

	prev, err := f.store.WorkLogs().GetByEmployeeAndDate(ctx, f.emp.ID, mustDate("2025-03-10"), f.companyID)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, prev.IsOpen())
}

func TestNightShiftClockInAfterMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, nightShift(), f.emp.ID)

	f.clock.Set(f.at(11, 0, 30, 0))
	in, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", in.LogDate)
	assert.Equal(t, 150, in.LateMinutes)

	f.clock.Set(f.at(11, 6, 0, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", out.LogDate)
	assert.Equal(t, 330, *out.TotalMinutes)
	assert.Equal(t, 150, out.LateMinutes)
	assert.Zero(t, out.EarlyLeaveMinutes)
	assert.Zero(t, out.OvertimeMinutes)
}

func TestForgottenClockOutOnNightShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, nightShift(), f.emp.ID)

	f.clock.Set(f.at(10, 22, 0, 0))
	stale, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)

	// The next night's shift has started, so the 10th's session is over.
	f.clock.Set(f.at(11, 22, 5, 0))
	in, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, in.ID)
	assert.Equal(t, "2025-03-11", in.LogDate)
	assert.Equal(t, 5, in.LateMinutes)

	f.clock.Set(f.at(12, 6, 0, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, 475, *out.TotalMinutes)
}

func TestOvernightSessionPredicates(t *testing.T) {
	loc := time.UTC
	night := &shift.Shift{StartTime: clock.NewTimeOfDay(22, 0, 0), EndTime: clock.NewTimeOfDay(6, 0, 0), IsNightShift: true}
	day := &shift.Shift{StartTime: clock.NewTimeOfDay(9, 0, 0), EndTime: clock.NewTimeOfDay(17, 0, 0)}
	logDate := mustDate("2025-03-10")

	assert.True(t, inOvernightShift(night, logDate, loc, time.Date(2025, 3, 11, 5, 59, 0, 0, loc)))
	assert.False(t, inOvernightShift(night, logDate, loc, time.Date(2025, 3, 11, 6, 0, 0, 0, loc)))
	assert.False(t, inOvernightShift(day, logDate, loc, time.Date(2025, 3, 10, 12, 0, 0, 0, loc)))
	assert.False(t, inOvernightShift(nil, logDate, loc, time.Date(2025, 3, 10, 12, 0, 0, 0, loc)))

	assert.True(t, overnightClosable(night, logDate, loc, time.Date(2025, 3, 11, 21, 59, 0, 0, loc)))
	assert.False(t, overnightClosable(night, logDate, loc, time.Date(2025, 3, 11, 22, 0, 0, 0, loc)))
	assert.False(t, overnightClosable(day, logDate, loc, time.Date(2025, 3, 11, 8, 0, 0, 0, loc)))
}

func TestClockOutOvertimeThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dayShift()
	req.OvertimeAfterHours = 9
	f.assignShift(t, req, f.emp.ID)

	f.clock.Set(f.at(10, 7, 0, 0))
	_, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)

	// 15 minutes past shift end, but 75 minutes past the 9 hour threshold.
	f.clock.Set(f.at(10, 17, 15, 0))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, 615, *out.TotalMinutes)
	assert.Equal(t, 75, out.OvertimeMinutes)
}

func TestClockOutWithoutShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(f.at(10, 10, 0, 0))
	in, err := f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Nil(t, in.ShiftID)
	assert.Zero(t, in.LateMinutes)

	f.clock.Set(f.at(10, 12, 0, 30))
	out, err := f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, 120, *out.TotalMinutes)
	assert.Zero(t, out.OvertimeMinutes)
	assert.Zero(t, out.EarlyLeaveMinutes)
}

func TestGetCurrentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.assignShift(t, dayShift(), f.emp.ID)

	status, err := f.svc.GetCurrentStatus(ctx, f.companyID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNotClockedIn, status.State)
	assert.Equal(t, "Asia/Jakarta", status.Timezone)
	require.NotNil(t, status.Shift)
	assert.Equal(t, sh.ID, status.Shift.ID)
	assert.Nil(t, status.WorkLog)

	f.clock.Set(f.at(10, 9, 0, 0))
	_, err = f.svc.ClockIn(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	f.clock.Set(f.at(10, 17, 0, 0))
	_, err = f.svc.ClockOut(ctx, f.companyID, f.emp.ID, attendance.ClockContext{})
	require.NoError(t, err)

	status, err = f.svc.GetCurrentStatus(ctx, f.companyID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedOut, status.State)
	require.NotNil(t, status.WorkLog)
	assert.Equal(t, 480, *status.WorkLog.TotalMinutes)
}

func TestGetCurrentStatusOnLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	typeID := f.store.AddLeaveType(f.companyID, "Annual", leave.CategoryPaid)
	f.store.AddLeaveRequest(leave.LeaveRequest{
		EmployeeID: f.emp.ID, LeaveTypeID: typeID, Status: leave.LeaveRequestStatusApproved,
		StartDate: mustDate("2025-03-09"), EndDate: mustDate("2025-03-11"),
	})

	status, err := f.svc.GetCurrentStatus(ctx, f.companyID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateOnLeave, status.State)
	require.NotNil(t, status.Leave)
	assert.Equal(t, "Annual", status.Leave.LeaveType)
	assert.Equal(t, "paid", status.Leave.Category)
	assert.Nil(t, status.WorkLog)
}

func TestRecordAttendanceNightShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignShift(t, nightShift(), f.emp.ID)

	resp, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "present",
		ClockIn: strPtr("22:10"), ClockOut: strPtr("06:05"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.LateMinutes)
	assert.Equal(t, 475, *resp.TotalMinutes)
	assert.Equal(t, 7.92, *resp.TotalHours)
	assert.Equal(t, 5, resp.OvertimeMinutes)
	assert.Equal(t, string(attendance.SourceManual), resp.Source)
	assert.True(t, f.at(11, 6, 5, 0).Equal(*resp.ClockOut))

	// An arrival after midnight belongs to the next morning of the same shift.
	resp, err = f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "late",
		ClockIn: strPtr("00:30"), ClockOut: strPtr("06:00"),
	})
	require.NoError(t, err)
	assert.True(t, f.at(11, 0, 30, 0).Equal(*resp.ClockIn))
	assert.Equal(t, 150, resp.LateMinutes)
	assert.Equal(t, 330, *resp.TotalMinutes)
	assert.Zero(t, resp.OvertimeMinutes)
}

func TestRecordAttendanceReentry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dayShift()
	req.OvertimeAfterHours = 8
	f.assignShift(t, req, f.emp.ID)

	first, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "present",
		ClockIn: strPtr("09:00"), ClockOut: strPtr("18:30"), BreakMinutes: intPtr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, 510, *first.TotalMinutes)
	assert.Equal(t, 30, first.OvertimeMinutes)

	// Status-only change keeps the derived figures.
	second, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "half_day", Note: strPtr("left for clinic"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "half_day", second.Status)
	assert.Equal(t, 510, *second.TotalMinutes)
	assert.Equal(t, 30, second.OvertimeMinutes)

	// A new clock-out recomputes against the stored clock-in; overrides win.
	third, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "present",
		ClockOut: strPtr("16:00"), LateMinutes: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 360, *third.TotalMinutes)
	assert.Equal(t, 60, third.EarlyLeaveMinutes)
	assert.Zero(t, third.OvertimeMinutes)
	assert.Equal(t, 5, third.LateMinutes)
	require.NotNil(t, third.Note)
	assert.Equal(t, "left for clinic", *third.Note)

	absent, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "absent",
	})
	require.NoError(t, err)
	assert.Nil(t, absent.ClockIn)
	assert.Nil(t, absent.ClockOut)
	assert.Nil(t, absent.TotalMinutes)
	assert.Zero(t, absent.LateMinutes)
	assert.Zero(t, absent.EarlyLeaveMinutes)
}

func TestRecordAttendanceClockOutNeedsClockIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordAttendance(context.Background(), f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "present", ClockOut: strPtr("17:00"),
	})
	assert.ErrorIs(t, err, attendance.ErrClockOutWithoutClockIn)

	logs, err := f.store.WorkLogs().ListByEmployeeAndRange(context.Background(), f.emp.ID, f.companyID, mustDate("2025-03-01"), mustDate("2025-03-31"))
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestBulkRecordAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.addEmployee("E002")

	resp, err := f.svc.BulkRecordAttendance(ctx, f.companyID, []attendance.RecordAttendanceRequest{
		{EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "present", ClockIn: strPtr("09:00"), ClockOut: strPtr("17:00")},
		{EmployeeID: uuid.NewString(), LogDate: "2025-03-10", Status: "present"},
		{EmployeeID: bob.ID, LogDate: "2025-03-10", Status: "absent"},
		{EmployeeID: bob.ID, LogDate: "not-a-date", Status: "absent"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.Equal(t, 2, resp.Recorded)
	require.Len(t, resp.Failed, 2)
	assert.Equal(t, 1, resp.Failed[0].Index)
	assert.Equal(t, 3, resp.Failed[1].Index)
}

func TestDeleteWorkLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, f.companyID, attendance.RecordAttendanceRequest{
		EmployeeID: f.emp.ID, LogDate: "2025-03-10", Status: "absent",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteWorkLog(ctx, uuid.NewString(), f.emp.ID, mustDate("2025-03-10")), attendance.ErrWorkLogNotFound)
	require.NoError(t, f.svc.DeleteWorkLog(ctx, f.companyID, f.emp.ID, mustDate("2025-03-10")))
	assert.ErrorIs(t, f.svc.DeleteWorkLog(ctx, f.companyID, f.emp.ID, mustDate("2025-03-10")), attendance.ErrWorkLogNotFound)
}

func TestMarkAbsentees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	present := f.emp
	onLeave := f.addEmployee("E002")
	missing := f.addEmployee("E003")
	f.store.AddEmployee(employee.Employee{CompanyID: f.companyID, EmployeeCode: "E004", HireDate: mustDate("2025-04-01")})
	f.store.AddEmployee(employee.Employee{CompanyID: f.companyID, EmployeeCode: "E005", EmploymentStatus: employee.EmploymentStatusResigned})

	f.clock.Set(f.at(10, 9, 0, 0))
	_, err := f.svc.ClockIn(ctx, f.companyID, present.ID, attendance.ClockContext{})
	require.NoError(t, err)

	typeID := f.store.AddLeaveType(f.companyID, "Sick", leave.CategoryPaid)
	f.store.AddLeaveRequest(leave.LeaveRequest{
		EmployeeID: onLeave.ID, LeaveTypeID: typeID, Status: leave.LeaveRequestStatusApproved,
		StartDate: mustDate("2025-03-10"), EndDate: mustDate("2025-03-10"),
	})

	marked, err := f.svc.MarkAbsentees(ctx, f.companyID, mustDate("2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	w, err := f.store.WorkLogs().GetByEmployeeAndDate(ctx, missing.ID, mustDate("2025-03-10"), f.companyID)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, attendance.StatusAbsent, w.Status)
	assert.Equal(t, attendance.SourceSystem, w.Source)

	marked, err = f.svc.MarkAbsentees(ctx, f.companyID, mustDate("2025-03-10"))
	require.NoError(t, err)
	assert.Zero(t, marked)

	// Saturday is not a working day on the default calendar.
	marked, err = f.svc.MarkAbsentees(ctx, f.companyID, mustDate("2025-03-15"))
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestGetMonthlyAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range []attendance.RecordAttendanceRequest{
		{EmployeeID: f.emp.ID, LogDate: "2025-03-03", Status: "present"},
		{EmployeeID: f.emp.ID, LogDate: "2025-03-04", Status: "late", LateMinutes: intPtr(12)},
		{EmployeeID: f.emp.ID, LogDate: "2025-03-05", Status: "absent"},
		{EmployeeID: f.emp.ID, LogDate: "2025-03-08", Status: "present"},
	} {
		_, err := f.svc.RecordAttendance(ctx, f.companyID, r)
		require.NoError(t, err)
	}

	summary, err := f.svc.GetMonthlyAttendance(ctx, f.companyID, f.emp.ID, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 21, summary.TotalWorkingDays)
	assert.Equal(t, 2, summary.PresentDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Equal(t, 1, summary.LateDays)
	assert.Equal(t, 12, summary.TotalLateMinutes)
	assert.Equal(t, 18, summary.NoShowDays)

	_, err = f.svc.GetMonthlyAttendance(ctx, f.companyID, f.emp.ID, 13, 2025)
	assert.Error(t, err)
}

func TestDefaultTimezoneWhenCompanyHasNone(t *testing.T) {
	store := memory.NewStore()
	c := store.AddCompany(company.Company{Name: "No zone"})
	emp := store.AddEmployee(employee.Employee{CompanyID: c.ID, EmployeeCode: "E001"})

	// 23:30 UTC on the 10th is already the 11th in Jakarta.
	clk := clock.NewMock(time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC))
	cal := calendarsvc.NewCalendarService(store, store.Calendars(), nil)
	shifts := shiftsvc.NewShiftService(store, store.Shifts(), store.ShiftAssignments(), store.Employees())
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	svc := NewAttendanceService(store, clk, companysvc.NewLocationService(store.Companies(), jakarta),
		store.WorkLogs(), store.Employees(), store.LeaveRequests(), cal, shifts, nil)

	resp, err := svc.ClockIn(context.Background(), c.ID, emp.ID, attendance.ClockContext{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.LogDate)
}

func mustDate(s string) time.Time {
	d, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
