package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type calendarRepo struct{ s *Store }

func (r calendarRepo) LockCompany(context.Context, string) error { return nil }

// overlapsOther mirrors the exclusion constraint.
func overlapsOther(d *state, c calendar.Configuration) bool {
	for _, other := range d.calendars {
		if other.ID != c.ID && other.CompanyID == c.CompanyID && other.Range().Overlaps(c.Range()) {
			return true
		}
	}
	return false
}

func (r calendarRepo) Create(_ context.Context, c calendar.Configuration) (calendar.Configuration, error) {
	c.ID = newID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	var err error
	r.s.write(func(d *state) {
		if overlapsOther(d, c) {
			err = calendar.ErrOverlapConflict
			return
		}
		d.calendars[c.ID] = c
	})
	if err != nil {
		return calendar.Configuration{}, err
	}
	return c, nil
}

func (r calendarRepo) Update(_ context.Context, c calendar.Configuration) (calendar.Configuration, error) {
	var err error
	r.s.write(func(d *state) {
		existing, ok := d.calendars[c.ID]
		if !ok || existing.CompanyID != c.CompanyID {
			err = calendar.ErrConfigurationNotFound
			return
		}
		if overlapsOther(d, c) {
			err = calendar.ErrOverlapConflict
			return
		}
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = r.s.now()
		d.calendars[c.ID] = c
	})
	if err != nil {
		return calendar.Configuration{}, err
	}
	return c, nil
}

func (r calendarRepo) Delete(_ context.Context, id string, companyID string) error {
	var err error
	r.s.write(func(d *state) {
		c, ok := d.calendars[id]
		if !ok || c.CompanyID != companyID {
			err = calendar.ErrConfigurationNotFound
			return
		}
		delete(d.calendars, id)
	})
	return err
}

func (r calendarRepo) GetByID(_ context.Context, id string, companyID string) (calendar.Configuration, error) {
	var c calendar.Configuration
	var ok bool
	r.s.read(func(d *state) { c, ok = d.calendars[id] })
	if !ok || c.CompanyID != companyID {
		return calendar.Configuration{}, calendar.ErrConfigurationNotFound
	}
	return c, nil
}

func (r calendarRepo) ListByCompany(_ context.Context, companyID string) ([]calendar.Configuration, error) {
	return r.filter(companyID, func(calendar.Configuration) bool { return true }), nil
}

func (r calendarRepo) ListOverlapping(_ context.Context, companyID string, start, end time.Time) ([]calendar.Configuration, error) {
	window := daterange.New(start, end)
	return r.filter(companyID, func(c calendar.Configuration) bool { return c.Range().Overlaps(window) }), nil
}

func (r calendarRepo) filter(companyID string, keep func(calendar.Configuration) bool) []calendar.Configuration {
	var out []calendar.Configuration
	r.s.read(func(d *state) {
		for _, c := range d.calendars {
			if c.CompanyID == companyID && keep(c) {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ValidFrom, out[j].ValidFrom
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	return out
}
