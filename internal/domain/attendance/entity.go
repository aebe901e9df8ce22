package attendance

import (
	"math"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
	StatusHoliday Status = "holiday"
)

var Statuses = []string{
	string(StatusPresent), string(StatusAbsent), string(StatusLate),
	string(StatusHalfDay), string(StatusOnLeave), string(StatusHoliday),
}

// ClearsClockTimes reports whether the status describes a day without work.
func (s Status) ClearsClockTimes() bool {
	return s == StatusAbsent || s == StatusOnLeave || s == StatusHoliday
}

type Source string

const (
	SourceClock  Source = "clock"
	SourceManual Source = "manual"
	SourceSystem Source = "system"
)

// State is the clock state machine position of an employee-day.
type State string

const (
	StateNotClockedIn State = "not_clocked_in"
	StateClockedIn    State = "clocked_in"
	StateClockedOut   State = "clocked_out"
	StateOnLeave      State = "on_leave"
)

// WorkLog is the single attendance row of an employee on a log date.
// Clock times are stored in UTC; LogDate is the tenant-local calendar date.
type WorkLog struct {
	ID         string
	EmployeeID string
	CompanyID  string
	LogDate    time.Time
	ShiftID    *string
	Status     Status

	ClockIn  *time.Time
	ClockOut *time.Time
	// TotalMinutes is worked time net of breaks; nil until clocked out.
	TotalMinutes      *int
	LateMinutes       int
	EarlyLeaveMinutes int
	OvertimeMinutes   int
	BreakMinutes      int

	Note              *string
	ClockInIP         *string
	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockOutIP        *string
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	Source            Source

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w WorkLog) IsOpen() bool {
	return w.ClockIn != nil && w.ClockOut == nil
}

func (w WorkLog) State() State {
	switch {
	case w.IsOpen():
		return StateClockedIn
	case w.ClockIn != nil && w.ClockOut != nil:
		return StateClockedOut
	case w.Status == StatusOnLeave:
		return StateOnLeave
	}
	return StateNotClockedIn
}

// TotalHours is TotalMinutes in hours rounded to two decimals.
func (w WorkLog) TotalHours() *float64 {
	if w.TotalMinutes == nil {
		return nil
	}
	h := MinutesToHours(*w.TotalMinutes)
	return &h
}

func MinutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

// ClearClockOut resets everything recorded at clock-out.
func (w *WorkLog) ClearClockOut() {
	w.ClockOut = nil
	w.TotalMinutes = nil
	w.EarlyLeaveMinutes = 0
	w.OvertimeMinutes = 0
	w.ClockOutIP = nil
	w.ClockOutLatitude = nil
	w.ClockOutLongitude = nil
}

// ClearClockTimes empties both clock events and every derived minute figure.
func (w *WorkLog) ClearClockTimes() {
	w.ClearClockOut()
	w.ClockIn = nil
	w.LateMinutes = 0
	w.ClockInIP = nil
	w.ClockInLatitude = nil
	w.ClockInLongitude = nil
}

// MonthlySummary is the per-employee attendance roll-up consumed by payroll.
type MonthlySummary struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`

	TotalWorkingDays int `json:"total_working_days"`
	PresentDays      int `json:"present_days"`
	AbsentDays       int `json:"absent_days"`
	HalfDays         int `json:"half_days"`
	LateDays         int `json:"late_days"`
	LeaveDays        int `json:"leave_days"`
	UnpaidLeaveDays  int `json:"unpaid_leave_days"`
	// NoShowDays are working dates with neither a work log nor approved leave.
	NoShowDays int `json:"no_show_days"`

	TotalLateMinutes       int `json:"total_late_minutes"`
	TotalOvertimeMinutes   int `json:"total_overtime_minutes"`
	TotalEarlyLeaveMinutes int `json:"total_early_leave_minutes"`
	TotalBreakMinutes      int `json:"total_break_minutes"`
}
