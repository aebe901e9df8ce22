package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildDefaultsToMondayToFriday(t *testing.T) {
	// 2025-03-01 is a Saturday.
	wd := Build("c-1", nil, date("2025-03-01"), date("2025-03-31"))

	assert.Len(t, wd.WorkingDates, 21)
	assert.Len(t, wd.NonWorkingDates, 10)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, wd.WorkingWeekdays)
	assert.Empty(t, wd.ConfigurationIDs)
	assert.False(t, wd.IsWorkingDate(date("2025-03-01")))
	assert.True(t, wd.IsWorkingDate(date("2025-03-03")))
}

func TestBuildUsesConfigurationCoveringEachDate(t *testing.T) {
	sixDay := Configuration{
		ID: "six-day", CompanyID: "c-1",
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, Saturday: true,
		ValidFrom: daterange.Ptr(date("2025-03-15")),
	}

	wd := Build("c-1", []Configuration{sixDay}, date("2025-03-01"), date("2025-03-31"))

	// Saturday the 1st and 8th fall back to the default calendar, the 15th onward are working.
	assert.False(t, wd.IsWorkingDate(date("2025-03-08")))
	assert.True(t, wd.IsWorkingDate(date("2025-03-15")))
	assert.True(t, wd.IsWorkingDate(date("2025-03-29")))
	assert.False(t, wd.IsWorkingDate(date("2025-03-30")))
	assert.Equal(t, []string{"six-day"}, wd.ConfigurationIDs)
	assert.Len(t, wd.WorkingDates, 21+3)
}

func TestConflictErrorUnwraps(t *testing.T) {
	err := error(&ConflictError{Err: ErrOverlapConflict, Conflicting: Configuration{ID: "cfg-1", ValidFrom: daterange.Ptr(date("2025-01-01"))}})

	assert.True(t, errors.Is(err, ErrOverlapConflict))
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cfg-1", ce.Conflicting.ID)
	assert.Contains(t, err.Error(), "2025-01-01 to +inf")
}

func TestCreateConfigurationRequestValidate(t *testing.T) {
	from, to := "2025-02-01", "2025-01-01"
	req := CreateConfigurationRequest{ValidFrom: &from, ValidTo: &to}
	assert.Error(t, req.Validate())

	req = CreateConfigurationRequest{CloseOpenEnded: true}
	assert.Error(t, req.Validate())

	req = CreateConfigurationRequest{ValidFrom: &from, Monday: true}
	assert.NoError(t, req.Validate())
}
