package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type calendarRepository struct {
	db *database.DB
}

func NewCalendarRepository(db *database.DB) calendar.Repository {
	return &calendarRepository{db: db}
}

const calendarColumns = `id, company_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday,
	valid_from, valid_to, created_at, updated_at`

func scanConfiguration(row pgx.Row) (calendar.Configuration, error) {
	var c calendar.Configuration
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Monday, &c.Tuesday, &c.Wednesday, &c.Thursday, &c.Friday, &c.Saturday, &c.Sunday,
		&c.ValidFrom, &c.ValidTo, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *calendarRepository) LockCompany(ctx context.Context, companyID string) error {
	return advisoryXactLock(ctx, r.db, "calendar:"+companyID)
}

func (r *calendarRepository) Create(ctx context.Context, c calendar.Configuration) (calendar.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return calendar.Configuration{}, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO calendar_configurations (
			id, company_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, valid_from, valid_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + calendarColumns

	created, err := scanConfiguration(q.QueryRow(ctx, query,
		id.String(), c.CompanyID, c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday,
		c.ValidFrom, c.ValidTo,
	))
	if err != nil {
		if database.IsPgError(err, database.ExclusionViolation) {
			return calendar.Configuration{}, calendar.ErrOverlapConflict
		}
		return calendar.Configuration{}, fmt.Errorf("failed to create calendar configuration: %w", err)
	}
	return created, nil
}

func (r *calendarRepository) Update(ctx context.Context, c calendar.Configuration) (calendar.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE calendar_configurations SET
			monday = $3, tuesday = $4, wednesday = $5, thursday = $6, friday = $7, saturday = $8, sunday = $9,
			valid_from = $10, valid_to = $11, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + calendarColumns

	updated, err := scanConfiguration(q.QueryRow(ctx, query,
		c.ID, c.CompanyID, c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday,
		c.ValidFrom, c.ValidTo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Configuration{}, calendar.ErrConfigurationNotFound
		}
		if database.IsPgError(err, database.ExclusionViolation) {
			return calendar.Configuration{}, calendar.ErrOverlapConflict
		}
		return calendar.Configuration{}, fmt.Errorf("failed to update calendar configuration: %w", err)
	}
	return updated, nil
}

func (r *calendarRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM calendar_configurations WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete calendar configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendar.ErrConfigurationNotFound
	}
	return nil
}

func (r *calendarRepository) GetByID(ctx context.Context, id string, companyID string) (calendar.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + calendarColumns + ` FROM calendar_configurations WHERE id = $1 AND company_id = $2`

	c, err := scanConfiguration(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Configuration{}, calendar.ErrConfigurationNotFound
		}
		return calendar.Configuration{}, fmt.Errorf("failed to get calendar configuration: %w", err)
	}
	return c, nil
}

func (r *calendarRepository) ListByCompany(ctx context.Context, companyID string) ([]calendar.Configuration, error) {
	query := `
		SELECT ` + calendarColumns + `
		FROM calendar_configurations
		WHERE company_id = $1
		ORDER BY valid_from ASC NULLS FIRST, created_at ASC
	`
	return r.list(ctx, query, companyID)
}

func (r *calendarRepository) ListOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]calendar.Configuration, error) {
	query := `
		SELECT ` + calendarColumns + `
		FROM calendar_configurations
		WHERE company_id = $1
		  AND (valid_from IS NULL OR valid_from <= $3)
		  AND (valid_to IS NULL OR valid_to >= $2)
		ORDER BY valid_from ASC NULLS FIRST
	`
	return r.list(ctx, query, companyID, start, end)
}

func (r *calendarRepository) list(ctx context.Context, query string, args ...interface{}) ([]calendar.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar configurations: %w", err)
	}
	defer rows.Close()

	var configs []calendar.Configuration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar configuration: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}
