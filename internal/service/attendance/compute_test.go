package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestMinutesBetween(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, minutesBetween(base, base))
	assert.Equal(t, 0, minutesBetween(base, base.Add(59*time.Second)))
	assert.Equal(t, 1, minutesBetween(base, base.Add(time.Minute)))
	assert.Equal(t, 0, minutesBetween(base, base.Add(-time.Hour)))
}

func TestFiguresAtClockOutFloorsAtZero(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := figuresAtClockOut(nil, in, time.UTC, in, in.Add(20*time.Minute), 60)
	assert.Zero(t, f.TotalMinutes)
}

func TestAnchorClockIn(t *testing.T) {
	night := &shift.Shift{StartTime: clock.NewTimeOfDay(22, 0, 0), EndTime: clock.NewTimeOfDay(6, 0, 0), IsNightShift: true}
	day := &shift.Shift{StartTime: clock.NewTimeOfDay(9, 0, 0), EndTime: clock.NewTimeOfDay(17, 0, 0)}
	logDate := mustDate("2025-03-10")

	assert.Equal(t, time.Date(2025, 3, 10, 22, 10, 0, 0, time.UTC), anchorClockIn(clock.NewTimeOfDay(22, 10, 0), night, logDate, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC), anchorClockIn(clock.NewTimeOfDay(1, 0, 0), night, logDate, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), anchorClockIn(clock.NewTimeOfDay(1, 0, 0), day, logDate, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), anchorClockIn(clock.NewTimeOfDay(1, 0, 0), nil, logDate, time.UTC))
}

func TestAnchorClockOut(t *testing.T) {
	logDate := mustDate("2025-03-10")
	in := time.Date(2025, 3, 10, 22, 10, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 11, 6, 5, 0, 0, time.UTC), anchorClockOut(clock.NewTimeOfDay(6, 5, 0), logDate, time.UTC, in))
	assert.Equal(t, time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC), anchorClockOut(clock.NewTimeOfDay(23, 0, 0), logDate, time.UTC, in))
}
