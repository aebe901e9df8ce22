package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== COMPONENTS ==========

func (r *payrollRepository) CreateComponent(ctx context.Context, component payroll.PayrollComponent) (payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollComponent{}, fmt.Errorf("failed to generate id: %w", err)
	}

	query := `
		INSERT INTO payroll_components (id, company_id, name, type, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, company_id, name, type, description, is_active, created_at, updated_at
	`

	var c payroll.PayrollComponent
	err = q.QueryRow(ctx, query,
		id.String(), component.CompanyID, component.Name, component.Type, component.Description, component.IsActive,
	).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return payroll.PayrollComponent{}, payroll.ErrPayrollComponentNameExists
		}
		return payroll.PayrollComponent{}, fmt.Errorf("failed to create payroll component: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) GetComponentByID(ctx context.Context, id string, companyID string) (payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, type, description, is_active, created_at, updated_at
		FROM payroll_components
		WHERE id = $1 AND company_id = $2
	`

	var c payroll.PayrollComponent
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollComponent{}, payroll.ErrPayrollComponentNotFound
		}
		return payroll.PayrollComponent{}, fmt.Errorf("failed to get payroll component: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) GetComponentsByCompanyID(ctx context.Context, companyID string, activeOnly bool) ([]payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, type, description, is_active, created_at, updated_at
		FROM payroll_components
		WHERE company_id = $1
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY type, name"

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll components: %w", err)
	}
	defer rows.Close()

	var components []payroll.PayrollComponent
	for rows.Next() {
		var c payroll.PayrollComponent
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

// ========== EMPLOYEE COMPONENTS ==========

const employeeComponentSelect = `
	SELECT epc.id, epc.employee_id, epc.payroll_component_id, epc.amount,
		   epc.effective_date, epc.end_date, epc.created_at, epc.updated_at,
		   pc.name, pc.type, pc.is_active
	FROM employee_payroll_components epc
	JOIN payroll_components pc ON epc.payroll_component_id = pc.id
	JOIN employees e ON epc.employee_id = e.id
`

func scanEmployeeComponent(row pgx.Row) (payroll.EmployeePayrollComponent, error) {
	var a payroll.EmployeePayrollComponent
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.PayrollComponentID, &a.Amount,
		&a.EffectiveDate, &a.EndDate, &a.CreatedAt, &a.UpdatedAt,
		&a.ComponentName, &a.ComponentType, &a.ComponentIsActive,
	)
	return a, err
}

func (r *payrollRepository) AssignComponentToEmployee(ctx context.Context, assignment payroll.EmployeePayrollComponent, companyID string) (payroll.EmployeePayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.EmployeePayrollComponent{}, fmt.Errorf("failed to generate id: %w", err)
	}

	// The SELECT guards the tenant: both the employee and the component must belong to companyID.
	query := `
		INSERT INTO employee_payroll_components (id, employee_id, payroll_component_id, amount, effective_date, end_date)
		SELECT $1, e.id, pc.id, $4, $5, $6
		FROM employees e, payroll_components pc
		WHERE e.id = $2 AND pc.id = $3 AND e.company_id = $7 AND pc.company_id = $7
		RETURNING id
	`

	var newID string
	err = q.QueryRow(ctx, query,
		id.String(), assignment.EmployeeID, assignment.PayrollComponentID, assignment.Amount,
		assignment.EffectiveDate, assignment.EndDate, companyID,
	).Scan(&newID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.EmployeePayrollComponent{}, payroll.ErrPayrollComponentNotFound
		}
		return payroll.EmployeePayrollComponent{}, fmt.Errorf("failed to assign component: %w", err)
	}

	a, err := scanEmployeeComponent(q.QueryRow(ctx, employeeComponentSelect+` WHERE epc.id = $1`, newID))
	if err != nil {
		return payroll.EmployeePayrollComponent{}, fmt.Errorf("failed to get employee component: %w", err)
	}
	return a, nil
}

func (r *payrollRepository) GetEmployeeComponents(ctx context.Context, employeeID string, companyID string) ([]payroll.EmployeePayrollComponent, error) {
	query := employeeComponentSelect + `
		WHERE epc.employee_id = $1 AND e.company_id = $2
		ORDER BY pc.type, pc.name, epc.effective_date
	`
	return r.listEmployeeComponents(ctx, query, employeeID, companyID)
}

func (r *payrollRepository) GetActiveEmployeeComponents(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]payroll.EmployeePayrollComponent, error) {
	query := employeeComponentSelect + `
		WHERE epc.employee_id = $1 AND e.company_id = $2
		  AND pc.is_active = true
		  AND epc.effective_date <= $4
		  AND (epc.end_date IS NULL OR epc.end_date >= $3)
		ORDER BY pc.type, pc.name, epc.effective_date
	`
	return r.listEmployeeComponents(ctx, query, employeeID, companyID, start, end)
}

func (r *payrollRepository) listEmployeeComponents(ctx context.Context, query string, args ...interface{}) ([]payroll.EmployeePayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee components: %w", err)
	}
	defer rows.Close()

	var assignments []payroll.EmployeePayrollComponent
	for rows.Next() {
		a, err := scanEmployeeComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee component: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *payrollRepository) RemoveEmployeeComponent(ctx context.Context, id string, employeeID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM employee_payroll_components epc
		USING employees e
		WHERE epc.employee_id = e.id AND epc.id = $1 AND epc.employee_id = $2 AND e.company_id = $3
	`
	tag, err := q.Exec(ctx, query, id, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to remove employee component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEmployeeComponentNotFound
	}
	return nil
}

// ========== SALARY SLIPS ==========

const salarySlipSelect = `
	SELECT ss.id, ss.employee_id, ss.company_id, ss.salary_period, ss.basic_salary,
		   ss.earnings, ss.deductions,
		   ss.total_working_days, ss.absent_days, ss.half_days, ss.unpaid_leave_days,
		   ss.lop_days, ss.per_day_salary, ss.lop_amount,
		   ss.total_earnings, ss.total_deductions, ss.net_payable,
		   ss.status, ss.payment_method, ss.payment_reference, ss.paid_at, ss.created_at, ss.updated_at,
		   e.full_name, e.employee_code
	FROM salary_slips ss
	JOIN employees e ON e.id = ss.employee_id
`

func scanSalarySlip(row pgx.Row) (payroll.SalarySlip, error) {
	var s payroll.SalarySlip
	var earningsBytes, deductionsBytes []byte
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID, &s.SalaryPeriod, &s.BasicSalary,
		&earningsBytes, &deductionsBytes,
		&s.TotalWorkingDays, &s.AbsentDays, &s.HalfDays, &s.UnpaidLeaveDays,
		&s.LOPDays, &s.PerDaySalary, &s.LOPAmount,
		&s.TotalEarnings, &s.TotalDeductions, &s.NetPayable,
		&s.Status, &s.PaymentMethod, &s.PaymentReference, &s.PaidAt, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeCode,
	)
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	if err := json.Unmarshal(earningsBytes, &s.Earnings); err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to decode earnings: %w", err)
	}
	if err := json.Unmarshal(deductionsBytes, &s.Deductions); err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return s, nil
}

func marshalLineItems(items []payroll.LineItem) ([]byte, error) {
	if items == nil {
		items = []payroll.LineItem{}
	}
	return json.Marshal(items)
}

func (r *payrollRepository) LockEmployeePeriod(ctx context.Context, employeeID string, period time.Time) error {
	return advisoryXactLock(ctx, r.db, "salary_slip:"+employeeID+":"+daterange.Key(period))
}

func (r *payrollRepository) GetSlipByEmployeePeriod(ctx context.Context, employeeID string, period time.Time, companyID string) (*payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSalarySlip(q.QueryRow(ctx, salarySlipSelect+` WHERE ss.employee_id = $1 AND ss.salary_period = $2 AND ss.company_id = $3`,
		employeeID, period, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get salary slip: %w", err)
	}
	return &s, nil
}

func (r *payrollRepository) CreateSlip(ctx context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.SalarySlip{}, false, fmt.Errorf("failed to generate id: %w", err)
	}
	earningsJSON, err := marshalLineItems(slip.Earnings)
	if err != nil {
		return payroll.SalarySlip{}, false, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductionsJSON, err := marshalLineItems(slip.Deductions)
	if err != nil {
		return payroll.SalarySlip{}, false, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		INSERT INTO salary_slips (
			id, employee_id, company_id, salary_period, basic_salary, earnings, deductions,
			total_working_days, absent_days, half_days, unpaid_leave_days,
			lop_days, per_day_salary, lop_amount,
			total_earnings, total_deductions, net_payable, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (employee_id, salary_period) DO NOTHING
		RETURNING id
	`

	var newID string
	err = q.QueryRow(ctx, query,
		id.String(), slip.EmployeeID, slip.CompanyID, slip.SalaryPeriod, slip.BasicSalary, earningsJSON, deductionsJSON,
		slip.TotalWorkingDays, slip.AbsentDays, slip.HalfDays, slip.UnpaidLeaveDays,
		slip.LOPDays, slip.PerDaySalary, slip.LOPAmount,
		slip.TotalEarnings, slip.TotalDeductions, slip.NetPayable, payroll.SlipStatusGenerated,
	).Scan(&newID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.GetSlipByEmployeePeriod(ctx, slip.EmployeeID, slip.SalaryPeriod, slip.CompanyID)
		if err != nil {
			return payroll.SalarySlip{}, false, err
		}
		if existing == nil {
			return payroll.SalarySlip{}, false, payroll.ErrSalarySlipNotFound
		}
		return *existing, false, nil
	}
	if err != nil {
		return payroll.SalarySlip{}, false, fmt.Errorf("failed to create salary slip: %w", err)
	}

	created, err := r.GetSlipByID(ctx, newID, slip.CompanyID, false)
	return created, true, err
}

func (r *payrollRepository) UpdateSlipFigures(ctx context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, err := marshalLineItems(slip.Earnings)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductionsJSON, err := marshalLineItems(slip.Deductions)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		UPDATE salary_slips SET
			basic_salary = $3, earnings = $4, deductions = $5,
			total_working_days = $6, absent_days = $7, half_days = $8, unpaid_leave_days = $9,
			lop_days = $10, per_day_salary = $11, lop_amount = $12,
			total_earnings = $13, total_deductions = $14, net_payable = $15,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'generated'
	`
	tag, err := q.Exec(ctx, query,
		slip.ID, slip.CompanyID, slip.BasicSalary, earningsJSON, deductionsJSON,
		slip.TotalWorkingDays, slip.AbsentDays, slip.HalfDays, slip.UnpaidLeaveDays,
		slip.LOPDays, slip.PerDaySalary, slip.LOPAmount,
		slip.TotalEarnings, slip.TotalDeductions, slip.NetPayable,
	)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to update salary slip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.SalarySlip{}, payroll.ErrSlipAlreadyPaid
	}

	return r.GetSlipByID(ctx, slip.ID, slip.CompanyID, false)
}

func (r *payrollRepository) GetSlipByID(ctx context.Context, id string, companyID string, forUpdate bool) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := salarySlipSelect + ` WHERE ss.id = $1 AND ss.company_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF ss`
	}

	s, err := scanSalarySlip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalarySlip{}, payroll.ErrSalarySlipNotFound
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to get salary slip: %w", err)
	}
	return s, nil
}

func (r *payrollRepository) ListSlipsByPeriod(ctx context.Context, companyID string, period time.Time) ([]payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, salarySlipSelect+` WHERE ss.company_id = $1 AND ss.salary_period = $2 ORDER BY e.employee_code`, companyID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary slips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.SalarySlip
	for rows.Next() {
		s, err := scanSalarySlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary slip: %w", err)
		}
		slips = append(slips, s)
	}
	return slips, rows.Err()
}

func (r *payrollRepository) MarkSlipPaid(ctx context.Context, id string, companyID string, info payroll.PaymentInfo, paidAt time.Time) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	var reference *string
	if info.Reference != "" {
		reference = &info.Reference
	}

	query := `
		UPDATE salary_slips
		SET status = 'paid', payment_method = $3, payment_reference = $4, paid_at = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'generated'
	`
	tag, err := q.Exec(ctx, query, id, companyID, info.Method, reference, paidAt)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to mark salary slip paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.SalarySlip{}, payroll.ErrSlipAlreadyPaid
	}
	return r.GetSlipByID(ctx, id, companyID, false)
}
