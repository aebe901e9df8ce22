package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Calendar conflicts carry the stored record they collided with
	var conflict *calendar.ConflictError
	if errors.As(err, &conflict) {
		ConflictWithData(w, conflict.Err.Error(), calendar.NewConfigurationResponse(conflict.Conflicting))
		return
	}

	switch {
	// Conflict
	case errors.Is(err, calendar.ErrOverlapConflict),
		errors.Is(err, calendar.ErrOpenRecordExists),
		errors.Is(err, payroll.ErrSlipAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollComponentNameExists),
		errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, err.Error())

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, calendar.ErrConfigurationNotFound),
		errors.Is(err, shift.ErrShiftNotFound),
		errors.Is(err, attendance.ErrWorkLogNotFound),
		errors.Is(err, payroll.ErrSalarySlipNotFound),
		errors.Is(err, payroll.ErrPayrollComponentNotFound),
		errors.Is(err, payroll.ErrEmployeeComponentNotFound):
		NotFound(w, err.Error())

	// Business rules
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrNoActiveClockIn),
		errors.Is(err, attendance.ErrClockOutWithoutClockIn),
		errors.Is(err, payroll.ErrEmployeeHasNoBaseSalary),
		errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, calendar.ErrInvalidRange):
		UnprocessableEntity(w, err.Error())

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
