package calendar

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

// Configuration is a tenant's working-week definition over a date window.
// A nil ValidFrom or ValidTo leaves that side unbounded.
type Configuration struct {
	ID        string
	CompanyID string
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
	ValidFrom *time.Time
	ValidTo   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultConfiguration is used when a tenant has no configuration covering a date.
func DefaultConfiguration(companyID string) Configuration {
	return Configuration{
		CompanyID: companyID,
		Monday:    true,
		Tuesday:   true,
		Wednesday: true,
		Thursday:  true,
		Friday:    true,
	}
}

func (c Configuration) IsWorkingWeekday(w time.Weekday) bool {
	switch w {
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	case time.Saturday:
		return c.Saturday
	case time.Sunday:
		return c.Sunday
	}
	return false
}

// Weekdays lists the working weekdays, Monday first.
func (c Configuration) Weekdays() []time.Weekday {
	var out []time.Weekday
	for _, w := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		if c.IsWorkingWeekday(w) {
			out = append(out, w)
		}
	}
	return out
}

func (c Configuration) Range() daterange.Range {
	return daterange.Range{From: c.ValidFrom, To: c.ValidTo}
}

func (c Configuration) IsOpenEnded() bool {
	return c.ValidTo == nil
}

// WorkingDays is the resolved calendar for a date range.
type WorkingDays struct {
	WorkingWeekdays []time.Weekday
	WorkingDates    []time.Time
	NonWorkingDates []time.Time
	// ConfigurationIDs lists the stored configurations that contributed; empty
	// means only the default calendar applied.
	ConfigurationIDs []string
}

func (w WorkingDays) IsWorkingDate(d time.Time) bool {
	key := daterange.Key(d)
	for _, wd := range w.WorkingDates {
		if daterange.Key(wd) == key {
			return true
		}
	}
	return false
}

// WorkingSet indexes WorkingDates by daterange.Key.
func (w WorkingDays) WorkingSet() map[string]struct{} {
	set := make(map[string]struct{}, len(w.WorkingDates))
	for _, d := range w.WorkingDates {
		set[daterange.Key(d)] = struct{}{}
	}
	return set
}

// Build resolves every date in [start, end] against configs. A date takes the
// configuration whose window contains it, or the default calendar.
func Build(companyID string, configs []Configuration, start, end time.Time) WorkingDays {
	def := DefaultConfiguration(companyID)
	var wd WorkingDays
	used := make(map[string]bool)

	pick := func(d time.Time) Configuration {
		for _, c := range configs {
			if c.Range().Contains(d) {
				if !used[c.ID] {
					used[c.ID] = true
					wd.ConfigurationIDs = append(wd.ConfigurationIDs, c.ID)
				}
				return c
			}
		}
		return def
	}

	wd.WorkingWeekdays = pick(start).Weekdays()
	for _, d := range daterange.Days(start, end) {
		if pick(d).IsWorkingWeekday(d.Weekday()) {
			wd.WorkingDates = append(wd.WorkingDates, d)
		} else {
			wd.NonWorkingDates = append(wd.NonWorkingDates, d)
		}
	}
	return wd
}
