package attendance

import "errors"

var (
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrNoActiveClockIn  = errors.New("no active clock-in found")

	ErrWorkLogNotFound        = errors.New("work log not found")
	ErrClockOutWithoutClockIn = errors.New("clock_out requires a clock_in")
)
