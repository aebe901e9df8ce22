package attendance

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type AggregatorImpl struct {
	calendar    calendar.Resolver
	workLogRepo attendance.WorkLogRepository
	leaveRepo   leave.LeaveRequestRepository
}

func NewAggregator(cal calendar.Resolver, workLogRepo attendance.WorkLogRepository, leaveRepo leave.LeaveRequestRepository) attendance.Aggregator {
	return &AggregatorImpl{calendar: cal, workLogRepo: workLogRepo, leaveRepo: leaveRepo}
}

func (a *AggregatorImpl) Aggregate(ctx context.Context, companyID string, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	start, end, err := daterange.MonthBounds(month, year)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	wd, err := a.calendar.ResolveWorkingDays(ctx, companyID, start, end)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	logs, err := a.workLogRepo.ListByEmployeeAndRange(ctx, employeeID, companyID, start, end)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to load work logs: %w", err)
	}

	leaves, err := a.leaveRepo.ListApprovedOverlapping(ctx, employeeID, companyID, start, end)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to load approved leave: %w", err)
	}

	s := summarize(wd, logs, leaves, daterange.New(start, end))
	s.EmployeeID = employeeID
	s.Month = month
	s.Year = year
	return s, nil
}

// summarize counts only working dates. A date covered by several leave
// requests counts once; it is unpaid when any of them is unpaid.
func summarize(wd calendar.WorkingDays, logs []attendance.WorkLog, leaves []leave.LeaveRequest, period daterange.Range) attendance.MonthlySummary {
	working := wd.WorkingSet()
	s := attendance.MonthlySummary{TotalWorkingDays: len(wd.WorkingDates)}

	logged := make(map[string]bool, len(logs))
	for _, w := range logs {
		key := daterange.Key(w.LogDate)
		if _, ok := working[key]; !ok {
			continue
		}
		logged[key] = true

		switch w.Status {
		case attendance.StatusPresent, attendance.StatusLate:
			s.PresentDays++
		case attendance.StatusAbsent:
			s.AbsentDays++
		case attendance.StatusHalfDay:
			s.HalfDays++
		}
		if w.LateMinutes > 0 {
			s.LateDays++
		}
		s.TotalLateMinutes += w.LateMinutes
		s.TotalOvertimeMinutes += w.OvertimeMinutes
		s.TotalEarlyLeaveMinutes += w.EarlyLeaveMinutes
		s.TotalBreakMinutes += w.BreakMinutes
	}

	unpaid := make(map[string]bool)
	for _, lr := range leaves {
		from, to := lr.StartDate, lr.EndDate
		if period.From != nil && from.Before(*period.From) {
			from = *period.From
		}
		if period.To != nil && to.After(*period.To) {
			to = *period.To
		}
		for _, d := range daterange.Days(from, to) {
			key := daterange.Key(d)
			if _, ok := working[key]; !ok {
				continue
			}
			wasUnpaid, seen := unpaid[key]
			unpaid[key] = wasUnpaid || lr.IsUnpaid()
			if !seen {
				s.LeaveDays++
			}
		}
	}
	for _, isUnpaid := range unpaid {
		if isUnpaid {
			s.UnpaidLeaveDays++
		}
	}

	for _, d := range wd.WorkingDates {
		key := daterange.Key(d)
		_, onLeave := unpaid[key]
		if !logged[key] && !onLeave {
			s.NoShowDays++
		}
	}

	return s
}
