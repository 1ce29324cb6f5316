package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `id, employee_id, period_month, period_year, period_start, period_end,
  base_salary, overtime, bonus, commission, allowances, total_earnings,
  tax, social_security, health_insurance, retirement_contribution, other_deductions, total_deductions,
  net_salary, status, COALESCE(approved_by::text, ''), approved_at, paid_at, payslip_generated, notes,
  created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_code, first_name, last_name, email,
           base_salary, currency, pay_frequency, tax_rate,
           health_insurance, retirement_plan,
           bank_account_number, bank_name, bank_routing_number, is_active
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(
		&p.ID, &p.Code, &p.FirstName, &p.LastName, &p.Email,
		&p.BaseSalary, &p.Currency, &p.PayFrequency, &p.TaxRate,
		&p.HealthInsurance, &p.RetirementPlan,
		&p.BankAccount, &p.BankName, &p.BankRouting, &p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EmployeeProfile{}, ErrEmployeeNotFound
		}
		return EmployeeProfile{}, err
	}
	return p, nil
}

// Insert persists a freshly built record. The compound unique index on
// (employee_id, period_month, period_year) is the uniqueness guard:
// racing creates resolve in Postgres and the loser comes back as
// ErrPayrollExists.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payrolls (
      employee_id, period_month, period_year, period_start, period_end,
      base_salary, overtime, bonus, commission, allowances, total_earnings,
      tax, social_security, health_insurance, retirement_contribution, other_deductions, total_deductions,
      net_salary, status, notes
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    RETURNING `+recordColumns+`
  `, rec.EmployeeID, rec.Period.Month, rec.Period.Year, rec.Period.StartDate, rec.Period.EndDate,
		rec.Earnings.BaseSalary, rec.Earnings.Overtime, rec.Earnings.Bonus, rec.Earnings.Commission,
		rec.Earnings.Allowances, rec.Earnings.TotalEarnings,
		rec.Deductions.Tax, rec.Deductions.SocialSecurity, rec.Deductions.HealthInsurance,
		rec.Deductions.RetirementContribution, rec.Deductions.OtherDeductions, rec.Deductions.TotalDeductions,
		rec.NetSalary, rec.Status, rec.Notes).
		Scan(scanTargets(&rec)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Record{}, ErrPayrollExists
			case "23503":
				return Record{}, ErrEmployeeNotFound
			}
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `SELECT `+recordColumns+` FROM payrolls WHERE id = $1`, id).
		Scan(scanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrPayrollNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.Month != 0 {
		where += fmt.Sprintf(" AND period_month = $%d", len(args)+1)
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		where += fmt.Sprintf(" AND period_year = $%d", len(args)+1)
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payrolls"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recordColumns + " FROM payrolls" + where +
		fmt.Sprintf(" ORDER BY period_year DESC, period_month DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(scanTargets(&rec)...); err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable fields, guarded so an approved or paid
// record can never be touched. Zero rows means either the record is
// gone or it is locked; a probe distinguishes the two.
func (s *Store) Update(ctx context.Context, rec Record) (Record, error) {
	err := s.DB.QueryRow(ctx, `
    UPDATE payrolls
    SET period_month = $2, period_year = $3, period_start = $4, period_end = $5,
        base_salary = $6, overtime = $7, bonus = $8, commission = $9, allowances = $10, total_earnings = $11,
        tax = $12, social_security = $13, health_insurance = $14, retirement_contribution = $15,
        other_deductions = $16, total_deductions = $17,
        net_salary = $18, status = $19, notes = $20, updated_at = now()
    WHERE id = $1 AND status NOT IN ($21, $22)
    RETURNING `+recordColumns+`
  `, rec.ID, rec.Period.Month, rec.Period.Year, rec.Period.StartDate, rec.Period.EndDate,
		rec.Earnings.BaseSalary, rec.Earnings.Overtime, rec.Earnings.Bonus, rec.Earnings.Commission,
		rec.Earnings.Allowances, rec.Earnings.TotalEarnings,
		rec.Deductions.Tax, rec.Deductions.SocialSecurity, rec.Deductions.HealthInsurance,
		rec.Deductions.RetirementContribution, rec.Deductions.OtherDeductions, rec.Deductions.TotalDeductions,
		rec.NetSalary, rec.Status, rec.Notes, StatusApproved, StatusPaid).
		Scan(scanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, s.transitionFailure(ctx, rec.ID, ErrPayrollLocked)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrPayrollExists
		}
		return Record{}, err
	}
	return rec, nil
}

// Approve is a compare-and-set: only a Pending record transitions, and
// a second invocation finds no Pending row and fails without touching
// approver or timestamp.
func (s *Store) Approve(ctx context.Context, id, approverID, notes string, at time.Time) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    UPDATE payrolls
    SET status = $2, approved_by = $3, approved_at = $4,
        notes = CASE WHEN $5 <> '' THEN $5 ELSE notes END,
        updated_at = now()
    WHERE id = $1 AND status = $6
    RETURNING `+recordColumns+`
  `, id, StatusApproved, approverID, at, notes, StatusPending).
		Scan(scanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, s.transitionFailure(ctx, id, ErrNotPending)
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) Reject(ctx context.Context, id, notes string) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    UPDATE payrolls
    SET status = $2,
        notes = CASE WHEN $3 <> '' THEN $3 ELSE notes END,
        updated_at = now()
    WHERE id = $1 AND status = $4
    RETURNING `+recordColumns+`
  `, id, StatusRejected, notes, StatusPending).
		Scan(scanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, s.transitionFailure(ctx, id, ErrNotPending)
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) MarkPaid(ctx context.Context, id string, at time.Time) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    UPDATE payrolls
    SET status = $2, paid_at = $3, updated_at = now()
    WHERE id = $1 AND status = $4
    RETURNING `+recordColumns+`
  `, id, StatusPaid, at, StatusApproved).
		Scan(scanTargets(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, s.transitionFailure(ctx, id, ErrNotApproved)
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) SetPayslipGenerated(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payrolls SET payslip_generated = TRUE, updated_at = now() WHERE id = $1
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPayrollNotFound
	}
	return nil
}

// YTDTotals sums approved and paid records for one employee and year.
// Negative nets flow through unclamped.
func (s *Store) YTDTotals(ctx context.Context, employeeID string, year int) (YTDTotals, error) {
	var totals YTDTotals
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_earnings), 0), COALESCE(SUM(total_deductions), 0), COALESCE(SUM(net_salary), 0)
    FROM payrolls
    WHERE employee_id = $1 AND period_year = $2 AND status IN ($3, $4)
  `, employeeID, year, StatusApproved, StatusPaid).
		Scan(&totals.Earnings, &totals.Deductions, &totals.NetPay)
	if err != nil {
		return YTDTotals{}, err
	}
	return totals, nil
}

func (s *Store) ApprovedForPeriod(ctx context.Context, month, year int) ([]BankRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.employee_code, e.first_name, e.last_name,
           e.bank_name, e.bank_account_number, e.bank_routing_number,
           p.net_salary, e.currency
    FROM payrolls p
    JOIN employees e ON p.employee_id = e.id
    WHERE p.period_month = $1 AND p.period_year = $2 AND p.status = $3
    ORDER BY e.employee_code
  `, month, year, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BankRow
	for rows.Next() {
		var r BankRow
		if err := rows.Scan(&r.EmployeeCode, &r.FirstName, &r.LastName,
			&r.BankName, &r.AccountNumber, &r.RoutingNumber, &r.NetSalary, &r.Currency); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// transitionFailure maps a zero-row guarded update to the right error:
// missing record vs wrong state.
func (s *Store) transitionFailure(ctx context.Context, id string, stateErr error) error {
	var status string
	err := s.DB.QueryRow(ctx, `SELECT status FROM payrolls WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPayrollNotFound
	}
	if err != nil {
		return err
	}
	return stateErr
}

func scanTargets(rec *Record) []any {
	return []any{
		&rec.ID, &rec.EmployeeID, &rec.Period.Month, &rec.Period.Year, &rec.Period.StartDate, &rec.Period.EndDate,
		&rec.Earnings.BaseSalary, &rec.Earnings.Overtime, &rec.Earnings.Bonus, &rec.Earnings.Commission,
		&rec.Earnings.Allowances, &rec.Earnings.TotalEarnings,
		&rec.Deductions.Tax, &rec.Deductions.SocialSecurity, &rec.Deductions.HealthInsurance,
		&rec.Deductions.RetirementContribution, &rec.Deductions.OtherDeductions, &rec.Deductions.TotalDeductions,
		&rec.NetSalary, &rec.Status, &rec.ApprovedBy, &rec.ApprovedAt, &rec.PaidAt, &rec.PayslipGenerated, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
}
