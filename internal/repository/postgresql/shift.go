package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `s.id, s.company_id, s.name, s.start_time, s.end_time, s.overtime_after_hours, s.is_night_shift, s.created_at, s.updated_at`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	var start, end pgtype.Time
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &start, &end, &s.OvertimeAfterHours, &s.IsNightShift, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return shift.Shift{}, err
	}
	s.StartTime = clock.FromMicroseconds(start.Microseconds)
	s.EndTime = clock.FromMicroseconds(end.Microseconds)
	return s, nil
}

func pgTime(t clock.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func (r *shiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO shifts AS s (id, company_id, name, start_time, end_time, overtime_after_hours, is_night_shift)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		id.String(), s.CompanyID, s.Name, pgTime(s.StartTime), pgTime(s.EndTime), s.OvertimeAfterHours, s.IsNightShift,
	))
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return created, nil
}

func (r *shiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts AS s SET
			name = $3, start_time = $4, end_time = $5, overtime_after_hours = $6, is_night_shift = $7, updated_at = NOW()
		WHERE s.id = $1 AND s.company_id = $2
		RETURNING ` + shiftColumns

	updated, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.CompanyID, s.Name, pgTime(s.StartTime), pgTime(s.EndTime), s.OvertimeAfterHours, s.IsNightShift,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		if database.IsPgError(err, database.UniqueViolation) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}
	return updated, nil
}

func (r *shiftRepository) GetByID(ctx context.Context, id string, companyID string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE s.id = $1 AND s.company_id = $2`

	s, err := scanShift(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return s, nil
}

func (r *shiftRepository) ListByCompany(ctx context.Context, companyID string) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+shiftColumns+` FROM shifts s WHERE s.company_id = $1 ORDER BY s.start_time, s.name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

type shiftAssignmentRepository struct {
	db *database.DB
}

func NewShiftAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}

const assignmentColumns = `id, company_id, shift_id, employee_id, effective_from, effective_to, created_at, updated_at`

func scanAssignment(row pgx.Row) (shift.Assignment, error) {
	var a shift.Assignment
	err := row.Scan(&a.ID, &a.CompanyID, &a.ShiftID, &a.EmployeeID, &a.EffectiveFrom, &a.EffectiveTo, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *shiftAssignmentRepository) Upsert(ctx context.Context, a shift.Assignment) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO shift_assignments (id, company_id, shift_id, employee_id, effective_from, effective_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (shift_id, employee_id) DO UPDATE SET
			effective_from = EXCLUDED.effective_from,
			effective_to = EXCLUDED.effective_to,
			updated_at = NOW()
		RETURNING ` + assignmentColumns

	saved, err := scanAssignment(q.QueryRow(ctx, query,
		id.String(), a.CompanyID, a.ShiftID, a.EmployeeID, a.EffectiveFrom, a.EffectiveTo,
	))
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to upsert shift assignment: %w", err)
	}
	return saved, nil
}

func (r *shiftAssignmentRepository) ListByEmployee(ctx context.Context, employeeID string, companyID string) ([]shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM shift_assignments
		WHERE employee_id = $1 AND company_id = $2
		ORDER BY effective_from ASC
	`
	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *shiftAssignmentRepository) GetEffectiveShift(ctx context.Context, employeeID string, date time.Time) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shift_assignments sa
		JOIN shifts s ON s.id = sa.shift_id
		WHERE sa.employee_id = $1
		  AND sa.effective_from <= $2
		  AND (sa.effective_to IS NULL OR sa.effective_to >= $2)
		ORDER BY sa.effective_from ASC
		LIMIT 1
	`

	s, err := scanShift(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve shift: %w", err)
	}
	return &s, nil
}
