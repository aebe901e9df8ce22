package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
)

type shiftRepo struct{ s *Store }

func nameTaken(d *state, s shift.Shift) bool {
	for _, other := range d.shifts {
		if other.ID != s.ID && other.CompanyID == s.CompanyID && other.Name == s.Name {
			return true
		}
	}
	return false
}

func (r shiftRepo) Create(_ context.Context, s shift.Shift) (shift.Shift, error) {
	s.ID = newID()
	s.CreatedAt = r.s.now()
	s.UpdatedAt = s.CreatedAt
	var err error
	r.s.write(func(d *state) {
		if nameTaken(d, s) {
			err = shift.ErrShiftNameExists
			return
		}
		d.shifts[s.ID] = s
	})
	if err != nil {
		return shift.Shift{}, err
	}
	return s, nil
}

func (r shiftRepo) Update(_ context.Context, s shift.Shift) (shift.Shift, error) {
	var err error
	r.s.write(func(d *state) {
		existing, ok := d.shifts[s.ID]
		if !ok || existing.CompanyID != s.CompanyID {
			err = shift.ErrShiftNotFound
			return
		}
		if nameTaken(d, s) {
			err = shift.ErrShiftNameExists
			return
		}
		s.CreatedAt = existing.CreatedAt
		s.UpdatedAt = r.s.now()
		d.shifts[s.ID] = s
	})
	if err != nil {
		return shift.Shift{}, err
	}
	return s, nil
}

func (r shiftRepo) GetByID(_ context.Context, id string, companyID string) (shift.Shift, error) {
	var s shift.Shift
	var ok bool
	r.s.read(func(d *state) { s, ok = d.shifts[id] })
	if !ok || s.CompanyID != companyID {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (r shiftRepo) ListByCompany(_ context.Context, companyID string) ([]shift.Shift, error) {
	var out []shift.Shift
	r.s.read(func(d *state) {
		for _, s := range d.shifts {
			if s.CompanyID == companyID {
				out = append(out, s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) Upsert(_ context.Context, a shift.Assignment) (shift.Assignment, error) {
	r.s.write(func(d *state) {
		for id, existing := range d.assignments {
			if existing.ShiftID == a.ShiftID && existing.EmployeeID == a.EmployeeID {
				existing.EffectiveFrom = a.EffectiveFrom
				existing.EffectiveTo = a.EffectiveTo
				existing.UpdatedAt = r.s.now()
				d.assignments[id] = existing
				a = existing
				return
			}
		}
		a.ID = newID()
		a.CreatedAt = r.s.now()
		a.UpdatedAt = a.CreatedAt
		d.assignments[a.ID] = a
	})
	return a, nil
}

func (r assignmentRepo) ListByEmployee(_ context.Context, employeeID string, companyID string) ([]shift.Assignment, error) {
	var out []shift.Assignment
	r.s.read(func(d *state) {
		for _, a := range d.assignments {
			if a.EmployeeID == employeeID && a.CompanyID == companyID {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.Before(out[j].EffectiveFrom) })
	return out, nil
}

func (r assignmentRepo) GetEffectiveShift(_ context.Context, employeeID string, date time.Time) (*shift.Shift, error) {
	var best *shift.Assignment
	var found *shift.Shift
	r.s.read(func(d *state) {
		for _, a := range d.assignments {
			if a.EmployeeID != employeeID || !a.Range().Contains(date) {
				continue
			}
			if best == nil || a.EffectiveFrom.Before(best.EffectiveFrom) {
				a := a
				best = &a
			}
		}
		if best != nil {
			if s, ok := d.shifts[best.ShiftID]; ok {
				found = &s
			}
		}
	})
	return found, nil
}
