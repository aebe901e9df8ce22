package shift

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

type CreateShiftRequest struct {
	Name               string  `json:"name"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	OvertimeAfterHours float64 `json:"overtime_after_hours"`
	IsNightShift       bool    `json:"is_night_shift"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}
	errs = append(errs, validateTimes(r.StartTime, r.EndTime, r.IsNightShift)...)
	if r.OvertimeAfterHours < 0 || r.OvertimeAfterHours > 24 {
		errs = append(errs, validator.ValidationError{Field: "overtime_after_hours", Message: "overtime_after_hours must be between 0 and 24"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateShiftRequest struct {
	ID                 string   `json:"-"`
	Name               *string  `json:"name"`
	StartTime          *string  `json:"start_time"`
	EndTime            *string  `json:"end_time"`
	OvertimeAfterHours *float64 `json:"overtime_after_hours"`
	IsNightShift       *bool    `json:"is_night_shift"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.StartTime != nil && !validator.IsValidTimeOfDay(*r.StartTime) {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be HH:MM or HH:MM:SS"})
	}
	if r.EndTime != nil && !validator.IsValidTimeOfDay(*r.EndTime) {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be HH:MM or HH:MM:SS"})
	}
	if r.OvertimeAfterHours != nil && (*r.OvertimeAfterHours < 0 || *r.OvertimeAfterHours > 24) {
		errs = append(errs, validator.ValidationError{Field: "overtime_after_hours", Message: "overtime_after_hours must be between 0 and 24"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateTimes also checks that a shift ending before it starts is flagged as a night shift.
func validateTimes(start, end string, night bool) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startTOD, startErr := clock.ParseTimeOfDay(start)
	if startErr != nil {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be HH:MM or HH:MM:SS"})
	}
	endTOD, endErr := clock.ParseTimeOfDay(end)
	if endErr != nil {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be HH:MM or HH:MM:SS"})
	}
	if startErr == nil && endErr == nil {
		if startTOD == endTOD {
			errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must differ from start_time"})
		} else if endTOD.Before(startTOD) && !night {
			errs = append(errs, validator.ValidationError{Field: "is_night_shift", Message: "a shift ending before it starts must be a night shift"})
		}
	}
	return errs
}

type AssignShiftRequest struct {
	ShiftID       string   `json:"shift_id"`
	EmployeeIDs   []string `json:"employee_ids"`
	EffectiveFrom string   `json:"effective_from"`
	EffectiveTo   *string  `json:"effective_to"`
}

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ShiftID) {
		errs = append(errs, validator.ValidationError{Field: "shift_id", Message: "shift_id must be a valid UUID"})
	}
	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "at least one employee is required"})
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "invalid employee id " + strings.TrimSpace(id)})
			break
		}
	}

	from, fromOK := validator.IsValidDate(r.EffectiveFrom)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
	}
	if r.EffectiveTo != nil {
		to, ok := validator.IsValidDate(*r.EffectiveTo)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
		} else if fromOK && to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be on or after effective_from"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	OvertimeAfterHours float64   `json:"overtime_after_hours"`
	IsNightShift       bool      `json:"is_night_shift"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:                 s.ID,
		Name:               s.Name,
		StartTime:          s.StartTime.String(),
		EndTime:            s.EndTime.String(),
		OvertimeAfterHours: s.OvertimeAfterHours,
		IsNightShift:       s.IsNightShift,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

type AssignmentResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	ShiftID       string  `json:"shift_id"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
}

func NewAssignmentResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		ShiftID:       a.ShiftID,
		EffectiveFrom: daterange.Format(a.EffectiveFrom),
	}
	if a.EffectiveTo != nil {
		s := daterange.Format(*a.EffectiveTo)
		resp.EffectiveTo = &s
	}
	return resp
}

type AssignShiftResponse struct {
	Assigned []AssignmentResponse `json:"assigned"`
	Failed   []AssignmentFailure  `json:"failed"`
}

type AssignmentFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}
