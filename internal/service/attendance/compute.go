package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
)

// minutesBetween is the whole minutes from a to b, never negative.
func minutesBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	return int(math.Floor(b.Sub(a).Minutes()))
}

// lateMinutes measures clockIn against the shift start on logDate.
func lateMinutes(sh *shift.Shift, logDate time.Time, loc *time.Location, clockIn time.Time) int {
	if sh == nil {
		return 0
	}
	start, _ := sh.Window(logDate, loc)
	return minutesBetween(start, clockIn)
}

// inOvernightShift reports whether a shift crossing midnight that started on
// logDate is still running at now.
func inOvernightShift(sh *shift.Shift, logDate time.Time, loc *time.Location, now time.Time) bool {
	if sh == nil || !sh.CrossesMidnight() {
		return false
	}
	_, end := sh.Window(logDate, loc)
	return now.Before(end)
}

// overnightClosable reports whether a session opened on logDate under a shift
// crossing midnight may still be closed at now: until the shift starts again.
func overnightClosable(sh *shift.Shift, logDate time.Time, loc *time.Location, now time.Time) bool {
	if sh == nil || !sh.CrossesMidnight() {
		return false
	}
	start, _ := sh.Window(logDate, loc)
	return now.Before(start.AddDate(0, 0, 1))
}

type clockOutFigures struct {
	TotalMinutes      int
	EarlyLeaveMinutes int
	OvertimeMinutes   int
}

// figuresAtClockOut derives worked time net of breaks and, with a shift,
// early leave and overtime relative to the shift end on logDate.
func figuresAtClockOut(sh *shift.Shift, logDate time.Time, loc *time.Location, clockIn, clockOut time.Time, breakMinutes int) clockOutFigures {
	var f clockOutFigures
	f.TotalMinutes = max(0, minutesBetween(clockIn, clockOut)-breakMinutes)
	if sh == nil {
		return f
	}

	_, end := sh.Window(logDate, loc)
	if clockOut.Before(end) {
		f.EarlyLeaveMinutes = minutesBetween(clockOut, end)
	}

	if threshold := sh.OvertimeThresholdMinutes(); threshold > 0 {
		f.OvertimeMinutes = max(0, f.TotalMinutes-threshold)
	} else {
		f.OvertimeMinutes = minutesBetween(end, clockOut)
	}
	return f
}

// applyFigures recomputes every derived minute field of w from its clock times.
func applyFigures(w *attendance.WorkLog, sh *shift.Shift, loc *time.Location) {
	if w.ClockIn == nil {
		return
	}
	w.LateMinutes = lateMinutes(sh, w.LogDate, loc, *w.ClockIn)
	if w.ClockOut == nil {
		w.TotalMinutes = nil
		w.EarlyLeaveMinutes = 0
		w.OvertimeMinutes = 0
		return
	}
	f := figuresAtClockOut(sh, w.LogDate, loc, *w.ClockIn, *w.ClockOut, w.BreakMinutes)
	w.TotalMinutes = &f.TotalMinutes
	w.EarlyLeaveMinutes = f.EarlyLeaveMinutes
	w.OvertimeMinutes = f.OvertimeMinutes
}

// anchorClockIn places a manually entered clock-in on logDate. On a shift
// crossing midnight, a time before the shift end belongs to the next morning.
func anchorClockIn(tod clock.TimeOfDay, sh *shift.Shift, logDate time.Time, loc *time.Location) time.Time {
	if sh != nil && sh.CrossesMidnight() && tod.Before(sh.EndTime) {
		return tod.On(logDate.AddDate(0, 0, 1), loc).UTC()
	}
	return tod.On(logDate, loc).UTC()
}

// anchorClockOut places a manually entered clock-out on logDate, moving it to
// the next day when it would precede clockIn.
func anchorClockOut(tod clock.TimeOfDay, logDate time.Time, loc *time.Location, clockIn time.Time) time.Time {
	out := tod.On(logDate, loc)
	for out.Before(clockIn) {
		out = out.AddDate(0, 0, 1)
	}
	return out.UTC()
}
