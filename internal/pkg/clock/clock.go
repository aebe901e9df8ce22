package clock

import (
	"sync"
	"time"
)

// Clock is the source of "now" for every time dependent calculation.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock {
	return systemClock{}
}

// Mock is a settable clock for tests and replays.
type Mock struct {
	mu sync.Mutex
	t  time.Time
}

func NewMock(t time.Time) *Mock {
	return &Mock{t: t}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
}

func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
}
