package clock

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall clock time without a date, stored as the offset from midnight.
type TimeOfDay time.Duration

const day = 24 * time.Hour

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// FromMicroseconds converts a PostgreSQL TIME value.
func FromMicroseconds(us int64) TimeOfDay {
	return TimeOfDay(time.Duration(us) * time.Microsecond)
}

func (t TimeOfDay) Microseconds() int64 {
	return time.Duration(t).Microseconds()
}

func (t TimeOfDay) Hour() int   { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int { return int(time.Duration(t)%time.Hour) / int(time.Minute) }
func (t TimeOfDay) Second() int { return int(time.Duration(t)%time.Minute) / int(time.Second) }

func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

func (t TimeOfDay) Valid() bool { return t >= 0 && time.Duration(t) < day }

// On anchors the time of day on the calendar date of date, in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
