package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
)

type workLogRepo struct{ s *Store }

func workLogKey(employeeID string, logDate time.Time) string {
	return employeeID + "|" + daterange.Key(logDate)
}

func (r workLogRepo) LockEmployeeDay(_ context.Context, employeeID string, logDate time.Time) (*attendance.WorkLog, error) {
	var found *attendance.WorkLog
	r.s.read(func(d *state) {
		if w, ok := d.workLogs[workLogKey(employeeID, logDate)]; ok {
			found = &w
		}
	})
	return found, nil
}

func (r workLogRepo) LockOpenSession(_ context.Context, employeeID string, since time.Time) (*attendance.WorkLog, error) {
	return r.openSession(employeeID, since, ""), nil
}

func (r workLogRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, logDate time.Time, companyID string) (*attendance.WorkLog, error) {
	var found *attendance.WorkLog
	r.s.read(func(d *state) {
		if w, ok := d.workLogs[workLogKey(employeeID, logDate)]; ok && w.CompanyID == companyID {
			found = &w
		}
	})
	return found, nil
}

func (r workLogRepo) GetOpenSession(_ context.Context, employeeID string, since time.Time, companyID string) (*attendance.WorkLog, error) {
	return r.openSession(employeeID, since, companyID), nil
}

// openSession returns the newest open log on or after since. An empty
// companyID skips the tenant filter.
func (r workLogRepo) openSession(employeeID string, since time.Time, companyID string) *attendance.WorkLog {
	since = daterange.DateOf(since)
	var found *attendance.WorkLog
	r.s.read(func(d *state) {
		for _, w := range d.workLogs {
			if w.EmployeeID != employeeID || !w.IsOpen() || w.LogDate.Before(since) {
				continue
			}
			if companyID != "" && w.CompanyID != companyID {
				continue
			}
			if found == nil || w.LogDate.After(found.LogDate) {
				w := w
				found = &w
			}
		}
	})
	return found
}

func (r workLogRepo) Upsert(_ context.Context, w attendance.WorkLog) (attendance.WorkLog, error) {
	w.LogDate = daterange.DateOf(w.LogDate)
	key := workLogKey(w.EmployeeID, w.LogDate)
	var err error
	r.s.write(func(d *state) {
		now := r.s.now()
		if existing, ok := d.workLogs[key]; ok {
			if existing.CompanyID != w.CompanyID {
				err = attendance.ErrWorkLogNotFound
				return
			}
			w.ID = existing.ID
			w.CreatedAt = existing.CreatedAt
		} else {
			w.ID = newID()
			w.CreatedAt = now
		}
		w.UpdatedAt = now
		d.workLogs[key] = w
	})
	if err != nil {
		return attendance.WorkLog{}, err
	}
	return w, nil
}

func (r workLogRepo) InsertIfMissing(_ context.Context, w attendance.WorkLog) (bool, error) {
	w.LogDate = daterange.DateOf(w.LogDate)
	key := workLogKey(w.EmployeeID, w.LogDate)
	inserted := false
	r.s.write(func(d *state) {
		if _, ok := d.workLogs[key]; ok {
			return
		}
		w.ID = newID()
		w.CreatedAt = r.s.now()
		w.UpdatedAt = w.CreatedAt
		d.workLogs[key] = w
		inserted = true
	})
	return inserted, nil
}

func (r workLogRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, companyID string, start, end time.Time) ([]attendance.WorkLog, error) {
	window := daterange.New(start, end)
	var out []attendance.WorkLog
	r.s.read(func(d *state) {
		for _, w := range d.workLogs {
			if w.EmployeeID == employeeID && w.CompanyID == companyID && window.Contains(w.LogDate) {
				out = append(out, w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.Before(out[j].LogDate) })
	return out, nil
}

func (r workLogRepo) Delete(_ context.Context, employeeID string, logDate time.Time, companyID string) error {
	key := workLogKey(employeeID, logDate)
	var err error
	r.s.write(func(d *state) {
		w, ok := d.workLogs[key]
		if !ok || w.CompanyID != companyID {
			err = attendance.ErrWorkLogNotFound
			return
		}
		delete(d.workLogs, key)
	})
	return err
}
