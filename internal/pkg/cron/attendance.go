package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

// AttendanceJobs marks yesterday's absentees once per tenant-local day.
type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	employeeRepo  employee.EmployeeRepository
	locations     company.LocationProvider
	clock         clock.Clock

	mu       sync.Mutex
	lastDone map[string]string // company id -> last processed local date
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	employeeRepo employee.EmployeeRepository,
	locations company.LocationProvider,
	clk clock.Clock,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		employeeRepo:  employeeRepo,
		locations:     locations,
		clock:         clk,
		lastDone:      map[string]string{},
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees runs MarkAbsentees for the previous local date of every
// tenant with active employees. A tenant is skipped once its date is done.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	companyIDs, err := j.employeeRepo.ListActiveCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get companies: %w", err)
	}

	total := 0
	for _, companyID := range companyIDs {
		loc, err := j.locations.Location(ctx, companyID)
		if err != nil {
			slog.Error("Cron: Failed to resolve company timezone", "company_id", companyID, "error", err)
			continue
		}
		yesterday := daterange.DateOf(j.clock.Now().In(loc)).AddDate(0, 0, -1)
		key := daterange.Format(yesterday)

		j.mu.Lock()
		done := j.lastDone[companyID] == key
		j.mu.Unlock()
		if done {
			continue
		}

		n, err := j.attendanceSvc.MarkAbsentees(ctx, companyID, yesterday)
		total += n
		if err != nil {
			// Partial runs are retried on the next tick; inserts are idempotent.
			slog.Error("Cron: Failed to mark absentees", "company_id", companyID, "date", key, "error", err)
			continue
		}

		j.mu.Lock()
		j.lastDone[companyID] = key
		j.mu.Unlock()
	}

	if total > 0 {
		slog.Info("Cron: Marked absent employees", "count", total)
	}
	return nil
}
