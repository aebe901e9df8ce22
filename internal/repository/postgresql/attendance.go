package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type workLogRepository struct {
	db *database.DB
}

func NewWorkLogRepository(db *database.DB) attendance.WorkLogRepository {
	return &workLogRepository{db: db}
}

const workLogColumns = `id, company_id, employee_id, log_date, shift_id, status,
	clock_in, clock_out, total_minutes, late_minutes, early_leave_minutes, overtime_minutes, break_minutes,
	note, clock_in_ip, clock_in_latitude, clock_in_longitude, clock_out_ip, clock_out_latitude, clock_out_longitude,
	source, created_at, updated_at`

func scanWorkLog(row pgx.Row) (attendance.WorkLog, error) {
	var w attendance.WorkLog
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.EmployeeID, &w.LogDate, &w.ShiftID, &w.Status,
		&w.ClockIn, &w.ClockOut, &w.TotalMinutes, &w.LateMinutes, &w.EarlyLeaveMinutes, &w.OvertimeMinutes, &w.BreakMinutes,
		&w.Note, &w.ClockInIP, &w.ClockInLatitude, &w.ClockInLongitude, &w.ClockOutIP, &w.ClockOutLatitude, &w.ClockOutLongitude,
		&w.Source, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func scanOptionalWorkLog(row pgx.Row, op string) (*attendance.WorkLog, error) {
	w, err := scanWorkLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &w, nil
}

func (r *workLogRepository) LockEmployeeDay(ctx context.Context, employeeID string, logDate time.Time) (*attendance.WorkLog, error) {
	if err := advisoryXactLock(ctx, r.db, "work_log:"+employeeID+":"+daterange.Key(logDate)); err != nil {
		return nil, err
	}

	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE employee_id = $1 AND log_date = $2 FOR UPDATE`
	return scanOptionalWorkLog(q.QueryRow(ctx, query, employeeID, logDate), "lock work log")
}

func (r *workLogRepository) LockOpenSession(ctx context.Context, employeeID string, since time.Time) (*attendance.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE employee_id = $1 AND log_date >= $2 AND clock_in IS NOT NULL AND clock_out IS NULL
		ORDER BY log_date DESC
		LIMIT 1
		FOR UPDATE
	`
	return scanOptionalWorkLog(q.QueryRow(ctx, query, employeeID, since), "lock open session")
}

func (r *workLogRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, logDate time.Time, companyID string) (*attendance.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE employee_id = $1 AND log_date = $2 AND company_id = $3`
	return scanOptionalWorkLog(q.QueryRow(ctx, query, employeeID, logDate, companyID), "get work log")
}

func (r *workLogRepository) GetOpenSession(ctx context.Context, employeeID string, since time.Time, companyID string) (*attendance.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE employee_id = $1 AND company_id = $3 AND log_date >= $2
		  AND clock_in IS NOT NULL AND clock_out IS NULL
		ORDER BY log_date DESC
		LIMIT 1
	`
	return scanOptionalWorkLog(q.QueryRow(ctx, query, employeeID, since, companyID), "get open session")
}

func (r *workLogRepository) Upsert(ctx context.Context, w attendance.WorkLog) (attendance.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.WorkLog{}, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO work_logs (
			id, company_id, employee_id, log_date, shift_id, status,
			clock_in, clock_out, total_minutes, late_minutes, early_leave_minutes, overtime_minutes, break_minutes,
			note, clock_in_ip, clock_in_latitude, clock_in_longitude, clock_out_ip, clock_out_latitude, clock_out_longitude,
			source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (employee_id, log_date) DO UPDATE SET
			shift_id = EXCLUDED.shift_id,
			status = EXCLUDED.status,
			clock_in = EXCLUDED.clock_in,
			clock_out = EXCLUDED.clock_out,
			total_minutes = EXCLUDED.total_minutes,
			late_minutes = EXCLUDED.late_minutes,
			early_leave_minutes = EXCLUDED.early_leave_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			break_minutes = EXCLUDED.break_minutes,
			note = EXCLUDED.note,
			clock_in_ip = EXCLUDED.clock_in_ip,
			clock_in_latitude = EXCLUDED.clock_in_latitude,
			clock_in_longitude = EXCLUDED.clock_in_longitude,
			clock_out_ip = EXCLUDED.clock_out_ip,
			clock_out_latitude = EXCLUDED.clock_out_latitude,
			clock_out_longitude = EXCLUDED.clock_out_longitude,
			source = EXCLUDED.source,
			updated_at = NOW()
		WHERE work_logs.company_id = EXCLUDED.company_id
		RETURNING ` + workLogColumns

	saved, err := scanWorkLog(q.QueryRow(ctx, query,
		id.String(), w.CompanyID, w.EmployeeID, w.LogDate, w.ShiftID, w.Status,
		w.ClockIn, w.ClockOut, w.TotalMinutes, w.LateMinutes, w.EarlyLeaveMinutes, w.OvertimeMinutes, w.BreakMinutes,
		w.Note, w.ClockInIP, w.ClockInLatitude, w.ClockInLongitude, w.ClockOutIP, w.ClockOutLatitude, w.ClockOutLongitude,
		w.Source,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row exists under another tenant.
			return attendance.WorkLog{}, attendance.ErrWorkLogNotFound
		}
		return attendance.WorkLog{}, fmt.Errorf("failed to save work log: %w", err)
	}
	return saved, nil
}

func (r *workLogRepository) InsertIfMissing(ctx context.Context, w attendance.WorkLog) (bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO work_logs (id, company_id, employee_id, log_date, shift_id, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, log_date) DO NOTHING
	`
	tag, err := q.Exec(ctx, query, id.String(), w.CompanyID, w.EmployeeID, w.LogDate, w.ShiftID, w.Status, w.Source)
	if err != nil {
		return false, fmt.Errorf("failed to insert work log: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *workLogRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]attendance.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE employee_id = $1 AND company_id = $2 AND log_date BETWEEN $3 AND $4
		ORDER BY log_date ASC
	`
	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.WorkLog
	for rows.Next() {
		w, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		logs = append(logs, w)
	}
	return logs, rows.Err()
}

func (r *workLogRepository) Delete(ctx context.Context, employeeID string, logDate time.Time, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_logs WHERE employee_id = $1 AND log_date = $2 AND company_id = $3`, employeeID, logDate, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete work log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrWorkLogNotFound
	}
	return nil
}
