package calendar

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

type CreateConfigurationRequest struct {
	Monday    bool    `json:"monday"`
	Tuesday   bool    `json:"tuesday"`
	Wednesday bool    `json:"wednesday"`
	Thursday  bool    `json:"thursday"`
	Friday    bool    `json:"friday"`
	Saturday  bool    `json:"saturday"`
	Sunday    bool    `json:"sunday"`
	ValidFrom *string `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
	// CloseOpenEnded ends the current open-ended configuration the day before
	// ValidFrom instead of rejecting the request.
	CloseOpenEnded bool `json:"close_open_ended"`
}

func (r *CreateConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = append(errs, validateBounds(r.ValidFrom, r.ValidTo)...)

	if r.CloseOpenEnded && r.ValidFrom == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "valid_from",
			Message: "valid_from is required when close_open_ended is set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateConfigurationRequest replaces the supplied fields. ClearValidFrom and
// ClearValidTo make the corresponding bound unbounded.
type UpdateConfigurationRequest struct {
	ID             string  `json:"-"`
	Monday         *bool   `json:"monday"`
	Tuesday        *bool   `json:"tuesday"`
	Wednesday      *bool   `json:"wednesday"`
	Thursday       *bool   `json:"thursday"`
	Friday         *bool   `json:"friday"`
	Saturday       *bool   `json:"saturday"`
	Sunday         *bool   `json:"sunday"`
	ValidFrom      *string `json:"valid_from"`
	ValidTo        *string `json:"valid_to"`
	ClearValidFrom bool    `json:"clear_valid_from"`
	ClearValidTo   bool    `json:"clear_valid_to"`
}

func (r *UpdateConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	errs = append(errs, validateBounds(r.ValidFrom, r.ValidTo)...)
	if r.ClearValidFrom && r.ValidFrom != nil {
		errs = append(errs, validator.ValidationError{Field: "valid_from", Message: "valid_from cannot be set and cleared at once"})
	}
	if r.ClearValidTo && r.ValidTo != nil {
		errs = append(errs, validator.ValidationError{Field: "valid_to", Message: "valid_to cannot be set and cleared at once"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateBounds(from, to *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	var fromDate, toDate time.Time
	var fromOK, toOK bool

	if from != nil {
		if fromDate, fromOK = validator.IsValidDate(*from); !fromOK {
			errs = append(errs, validator.ValidationError{Field: "valid_from", Message: "valid_from must be in YYYY-MM-DD format"})
		}
	}
	if to != nil {
		if toDate, toOK = validator.IsValidDate(*to); !toOK {
			errs = append(errs, validator.ValidationError{Field: "valid_to", Message: "valid_to must be in YYYY-MM-DD format"})
		}
	}
	if fromOK && toOK && toDate.Before(fromDate) {
		errs = append(errs, validator.ValidationError{Field: "valid_to", Message: "valid_to must be on or after valid_from"})
	}
	return errs
}

type ConfigurationResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Monday    bool      `json:"monday"`
	Tuesday   bool      `json:"tuesday"`
	Wednesday bool      `json:"wednesday"`
	Thursday  bool      `json:"thursday"`
	Friday    bool      `json:"friday"`
	Saturday  bool      `json:"saturday"`
	Sunday    bool      `json:"sunday"`
	ValidFrom *string   `json:"valid_from"`
	ValidTo   *string   `json:"valid_to"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConfigurationResponse(c Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Monday:    c.Monday,
		Tuesday:   c.Tuesday,
		Wednesday: c.Wednesday,
		Thursday:  c.Thursday,
		Friday:    c.Friday,
		Saturday:  c.Saturday,
		Sunday:    c.Sunday,
		ValidFrom: datePtrToString(c.ValidFrom),
		ValidTo:   datePtrToString(c.ValidTo),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type WorkingDaysResponse struct {
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	WorkingWeekdays  []string `json:"working_weekdays"`
	WorkingDates     []string `json:"working_dates"`
	NonWorkingDates  []string `json:"non_working_dates"`
	ConfigurationIDs []string `json:"configuration_ids"`
}

func NewWorkingDaysResponse(start, end time.Time, wd WorkingDays) WorkingDaysResponse {
	resp := WorkingDaysResponse{
		StartDate:        daterange.Format(start),
		EndDate:          daterange.Format(end),
		WorkingWeekdays:  make([]string, 0, len(wd.WorkingWeekdays)),
		WorkingDates:     make([]string, 0, len(wd.WorkingDates)),
		NonWorkingDates:  make([]string, 0, len(wd.NonWorkingDates)),
		ConfigurationIDs: wd.ConfigurationIDs,
	}
	for _, w := range wd.WorkingWeekdays {
		resp.WorkingWeekdays = append(resp.WorkingWeekdays, w.String())
	}
	for _, d := range wd.WorkingDates {
		resp.WorkingDates = append(resp.WorkingDates, daterange.Format(d))
	}
	for _, d := range wd.NonWorkingDates {
		resp.NonWorkingDates = append(resp.NonWorkingDates, daterange.Format(d))
	}
	return resp
}

func datePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := daterange.Format(*t)
	return &s
}

func boundString(t *time.Time, unbounded string) string {
	if t == nil {
		return unbounded
	}
	return daterange.Format(*t)
}
