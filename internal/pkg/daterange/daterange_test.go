package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dp(s string) *time.Time {
	t := d(s)
	return &t
}

func TestRangeOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Range
		want bool
	}{
		{"disjoint", Range{dp("2025-01-01"), dp("2025-01-31")}, Range{dp("2025-02-01"), dp("2025-02-28")}, false},
		{"touching inclusive end", Range{dp("2025-01-01"), dp("2025-01-31")}, Range{dp("2025-01-31"), dp("2025-02-28")}, true},
		{"contained", Range{dp("2025-01-01"), dp("2025-12-31")}, Range{dp("2025-03-01"), dp("2025-03-31")}, true},
		{"open end vs later", Range{dp("2025-01-01"), nil}, Range{dp("2030-01-01"), dp("2030-01-31")}, true},
		{"open start vs earlier", Range{nil, dp("2025-01-01")}, Range{dp("1990-01-01"), dp("1990-01-31")}, true},
		{"open start vs later", Range{nil, dp("2025-01-01")}, Range{dp("2025-01-02"), nil}, false},
		{"fully unbounded", Range{}, Range{dp("2025-01-01"), dp("2025-01-01")}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Overlaps(c.b))
			assert.Equal(t, c.want, c.b.Overlaps(c.a))
		})
	}
}

func TestRangeContainsAndValid(t *testing.T) {
	r := Range{dp("2025-03-01"), dp("2025-03-31")}
	assert.True(t, r.Contains(d("2025-03-01")))
	assert.True(t, r.Contains(d("2025-03-31")))
	assert.False(t, r.Contains(d("2025-04-01")))
	assert.True(t, r.Valid())

	assert.False(t, Range{dp("2025-03-02"), dp("2025-03-01")}.Valid())
	assert.True(t, Range{dp("2025-03-02"), nil}.OpenEnded())
}

func TestDays(t *testing.T) {
	days := Days(d("2025-02-27"), d("2025-03-02"))
	require.Len(t, days, 4)
	assert.Equal(t, "2025-02-27", Format(days[0]))
	assert.Equal(t, "2025-03-02", Format(days[3]))

	assert.Empty(t, Days(d("2025-03-02"), d("2025-03-01")))
}

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds(2, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", Format(start))
	assert.Equal(t, "2024-02-29", Format(end))

	_, _, err = MonthBounds(13, 2024)
	assert.Error(t, err)
}

func TestDateOfKeepsLocalDate(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2025-03-10 20:00 UTC is already the 11th in Jakarta.
	instant := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-11", Key(instant.In(jakarta)))
	assert.Equal(t, "2025-03-10", Key(instant))
}
