package shift

import (
	"math"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type Shift struct {
	ID        string
	CompanyID string
	Name      string
	StartTime clock.TimeOfDay
	EndTime   clock.TimeOfDay
	// OvertimeAfterHours switches overtime from "past shift end" to "worked
	// longer than this many hours". Zero keeps the boundary rule.
	OvertimeAfterHours float64
	IsNightShift       bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CrossesMidnight reports whether the shift ends on the day after it starts.
func (s Shift) CrossesMidnight() bool {
	return s.IsNightShift && s.EndTime.Before(s.StartTime)
}

// Window anchors the shift on logDate in loc.
func (s Shift) Window(logDate time.Time, loc *time.Location) (start, end time.Time) {
	start = s.StartTime.On(logDate, loc)
	end = s.EndTime.On(logDate, loc)
	if s.CrossesMidnight() {
		end = s.EndTime.On(logDate.AddDate(0, 0, 1), loc)
	}
	return start, end
}

// OvertimeThresholdMinutes is zero when overtime is boundary based.
func (s Shift) OvertimeThresholdMinutes() int {
	if s.OvertimeAfterHours <= 0 {
		return 0
	}
	return int(math.Round(s.OvertimeAfterHours * 60))
}

type Assignment struct {
	ID            string
	EmployeeID    string
	ShiftID       string
	CompanyID     string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Assignment) Range() daterange.Range {
	return daterange.Range{From: &a.EffectiveFrom, To: a.EffectiveTo}
}
