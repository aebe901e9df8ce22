// Package daterange holds calendar date helpers shared by the calendar,
// attendance and payroll services. Dates are represented as time.Time values
// at UTC midnight.
package daterange

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

const Layout = "2006-01-02"

// DateOf strips the clock from t, keeping the calendar date of t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Key is a stable map key for a date.
func Key(t time.Time) string {
	return DateOf(t).Format(Layout)
}

// Range is an inclusive date range. A nil bound is unbounded on that side.
type Range struct {
	From *time.Time
	To   *time.Time
}

func New(from, to time.Time) Range {
	return Range{From: &from, To: &to}
}

func (r Range) Valid() bool {
	return r.From == nil || r.To == nil || !r.To.Before(*r.From)
}

// Overlaps reports whether the two inclusive ranges share at least one date.
func (r Range) Overlaps(o Range) bool {
	return notAfter(r.From, o.To) && notAfter(o.From, r.To)
}

func (r Range) Contains(d time.Time) bool {
	d = DateOf(d)
	if r.From != nil && d.Before(DateOf(*r.From)) {
		return false
	}
	if r.To != nil && d.After(DateOf(*r.To)) {
		return false
	}
	return true
}

func (r Range) OpenEnded() bool {
	return r.To == nil
}

func notAfter(from, to *time.Time) bool {
	if from == nil || to == nil {
		return true
	}
	return !DateOf(*from).After(DateOf(*to))
}

// Days lists every date from start to end inclusive.
func Days(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthBounds returns the first and last date of the given month.
func MonthBounds(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if year < 1900 || year > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("year %d out of range", year)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	n := now.With(first)
	return n.BeginningOfMonth(), DateOf(n.EndOfMonth()), nil
}

func Ptr(t time.Time) *time.Time {
	return &t
}
