package attendance

import (
	"testing"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	start, end := mustDate("2025-03-01"), mustDate("2025-03-31")
	wd := calendar.Build("c1", nil, start, end)

	logs := []attendance.WorkLog{
		{LogDate: mustDate("2025-03-03"), Status: attendance.StatusPresent, OvertimeMinutes: 30, BreakMinutes: 60},
		{LogDate: mustDate("2025-03-04"), Status: attendance.StatusPresent, LateMinutes: 7, EarlyLeaveMinutes: 15},
		{LogDate: mustDate("2025-03-05"), Status: attendance.StatusAbsent},
		{LogDate: mustDate("2025-03-06"), Status: attendance.StatusHalfDay},
		// Weekend rows are ignored entirely.
		{LogDate: mustDate("2025-03-09"), Status: attendance.StatusAbsent, LateMinutes: 99},
	}
	leaves := []leave.LeaveRequest{
		// Starts in February; only March working days count.
		{StartDate: mustDate("2025-02-27"), EndDate: mustDate("2025-03-03"), Category: leave.CategoryPaid},
		// Overlaps the next request on the 12th; Saturday the 15th is skipped.
		{StartDate: mustDate("2025-03-11"), EndDate: mustDate("2025-03-12"), Category: leave.CategoryPaid},
		{StartDate: mustDate("2025-03-12"), EndDate: mustDate("2025-03-15"), Category: leave.CategoryUnpaid},
		// Runs into April.
		{StartDate: mustDate("2025-03-31"), EndDate: mustDate("2025-04-04"), Category: leave.CategoryUnpaid},
	}

	s := summarize(wd, logs, leaves, daterange.New(start, end))

	assert.Equal(t, 21, s.TotalWorkingDays)
	assert.Equal(t, 2, s.PresentDays)
	assert.Equal(t, 1, s.AbsentDays)
	assert.Equal(t, 1, s.HalfDays)
	assert.Equal(t, 1, s.LateDays)
	assert.Equal(t, 7, s.TotalLateMinutes)
	assert.Equal(t, 30, s.TotalOvertimeMinutes)
	assert.Equal(t, 15, s.TotalEarlyLeaveMinutes)
	assert.Equal(t, 60, s.TotalBreakMinutes)

	// 3rd, 11th, 12th, 13th, 14th, 31st.
	assert.Equal(t, 6, s.LeaveDays)
	// 12th, 13th, 14th, 31st.
	assert.Equal(t, 4, s.UnpaidLeaveDays)
	// 21 working days, 4 logged, 5 more on leave only.
	assert.Equal(t, 12, s.NoShowDays)
}

func TestSummarizeEmptyMonthIsAllNoShow(t *testing.T) {
	start, end := mustDate("2025-02-01"), mustDate("2025-02-28")
	wd := calendar.Build("c1", nil, start, end)

	s := summarize(wd, nil, nil, daterange.New(start, end))
	assert.Equal(t, 20, s.TotalWorkingDays)
	assert.Equal(t, 20, s.NoShowDays)
	assert.Zero(t, s.LeaveDays)
}
