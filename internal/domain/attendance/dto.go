package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// ClockContext is where a clock event came from.
type ClockContext struct {
	IP        string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (c *ClockContext) Validate() error {
	var errs validator.ValidationErrors

	if c.IP != "" && !validator.IsValidIP(c.IP) {
		errs = append(errs, validator.ValidationError{Field: "ip", Message: "ip must be a valid IP address"})
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude and longitude must be supplied together"})
	}
	if c.Latitude != nil && !validator.IsValidLatitude(*c.Latitude) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}
	if c.Longitude != nil && !validator.IsValidLongitude(*c.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordAttendanceRequest is a manual entry or correction for one employee-day.
// Clock times are wall-clock times on LogDate in the tenant's zone.
type RecordAttendanceRequest struct {
	EmployeeID        string  `json:"employee_id"`
	LogDate           string  `json:"log_date"`
	Status            string  `json:"status"`
	ClockIn           *string `json:"clock_in"`
	ClockOut          *string `json:"clock_out"`
	BreakMinutes      *int    `json:"break_minutes"`
	LateMinutes       *int    `json:"late_minutes"`
	EarlyLeaveMinutes *int    `json:"early_leave_minutes"`
	OvertimeMinutes   *int    `json:"overtime_minutes"`
	Note              *string `json:"note"`
}

func (r *RecordAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if _, ok := validator.IsValidDate(r.LogDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "log_date", Message: "log_date must be in YYYY-MM-DD format"})
	}
	if !validator.IsInSlice(r.Status, Statuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of present, absent, late, half_day, on_leave, holiday"})
	}
	if r.ClockIn != nil && !validator.IsValidTimeOfDay(*r.ClockIn) {
		errs = append(errs, validator.ValidationError{Field: "clock_in", Message: "clock_in must be HH:MM or HH:MM:SS"})
	}
	if r.ClockOut != nil && !validator.IsValidTimeOfDay(*r.ClockOut) {
		errs = append(errs, validator.ValidationError{Field: "clock_out", Message: "clock_out must be HH:MM or HH:MM:SS"})
	}
	if Status(r.Status).ClearsClockTimes() && (r.ClockIn != nil || r.ClockOut != nil) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status " + r.Status + " cannot carry clock times"})
	}

	for _, f := range []struct {
		field string
		v     *int
	}{
		{"break_minutes", r.BreakMinutes},
		{"late_minutes", r.LateMinutes},
		{"early_leave_minutes", r.EarlyLeaveMinutes},
		{"overtime_minutes", r.OvertimeMinutes},
	} {
		if f.v != nil && (*f.v < 0 || *f.v > 24*60) {
			errs = append(errs, validator.ValidationError{Field: f.field, Message: f.field + " must be between 0 and 1440"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsNightShift bool   `json:"is_night_shift"`
}

type LeaveInfo struct {
	LeaveRequestID string `json:"leave_request_id"`
	LeaveType      string `json:"leave_type"`
	Category       string `json:"category"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type WorkLogResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	LogDate           string     `json:"log_date"`
	Status            string     `json:"status"`
	ShiftID           *string    `json:"shift_id,omitempty"`
	ClockIn           *time.Time `json:"clock_in,omitempty"`
	ClockOut          *time.Time `json:"clock_out,omitempty"`
	TotalMinutes      *int       `json:"total_minutes,omitempty"`
	TotalHours        *float64   `json:"total_hours,omitempty"`
	LateMinutes       int        `json:"late_minutes"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
	OvertimeMinutes   int        `json:"overtime_minutes"`
	BreakMinutes      int        `json:"break_minutes"`
	Note              *string    `json:"note,omitempty"`
	Source            string     `json:"source"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewWorkLogResponse renders clock times in loc.
func NewWorkLogResponse(w WorkLog, loc *time.Location) WorkLogResponse {
	return WorkLogResponse{
		ID:                w.ID,
		EmployeeID:        w.EmployeeID,
		LogDate:           daterange.Format(w.LogDate),
		Status:            string(w.Status),
		ShiftID:           w.ShiftID,
		ClockIn:           inLocation(w.ClockIn, loc),
		ClockOut:          inLocation(w.ClockOut, loc),
		TotalMinutes:      w.TotalMinutes,
		TotalHours:        w.TotalHours(),
		LateMinutes:       w.LateMinutes,
		EarlyLeaveMinutes: w.EarlyLeaveMinutes,
		OvertimeMinutes:   w.OvertimeMinutes,
		BreakMinutes:      w.BreakMinutes,
		Note:              w.Note,
		Source:            string(w.Source),
		UpdatedAt:         w.UpdatedAt,
	}
}

type CurrentStatusResponse struct {
	State    State            `json:"state"`
	Date     string           `json:"date"`
	Timezone string           `json:"timezone"`
	WorkLog  *WorkLogResponse `json:"work_log,omitempty"`
	Shift    *ShiftInfo       `json:"shift,omitempty"`
	Leave    *LeaveInfo       `json:"leave,omitempty"`
	Message  string           `json:"message"`
}

type BulkRecordResponse struct {
	Recorded int                 `json:"recorded"`
	Failed   []BulkRecordFailure `json:"failed"`
}

type BulkRecordFailure struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id"`
	LogDate    string `json:"log_date"`
	Error      string `json:"error"`
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
