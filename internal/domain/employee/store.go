package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const employeeColumns = `id, employee_code, first_name, last_name, email, department_id, position,
  employment_type, joining_date, base_salary, currency, pay_frequency, overtime_rate,
  tax_rate, tax_exemptions, health_insurance, dental_insurance, retirement_plan, paid_time_off,
  bank_account_number, bank_name, bank_routing_number,
  is_active, termination_date, COALESCE(termination_reason, ''), created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type Filter struct {
	DepartmentID string
	Active       *bool
	Search       string
}

func (s *Store) Insert(ctx context.Context, emp Employee) (Employee, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      employee_code, first_name, last_name, email, department_id, position,
      employment_type, joining_date, base_salary, currency, pay_frequency, overtime_rate,
      tax_rate, tax_exemptions, health_insurance, dental_insurance, retirement_plan, paid_time_off,
      bank_account_number, bank_name, bank_routing_number
    )
    VALUES (
      'EMP' || lpad(nextval('employee_code_seq')::text, 4, '0'),
      $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
      $12, $13, $14, $15, $16, $17, $18, $19, $20
    )
    RETURNING `+employeeColumns+`
  `, emp.FirstName, emp.LastName, emp.Email, emp.DepartmentID, emp.Position,
		emp.EmploymentType, emp.JoiningDate, emp.BaseSalary, emp.Currency, emp.PayFrequency, emp.OvertimeRate,
		emp.TaxRate, emp.TaxExemptions, emp.Benefits.HealthInsurance, emp.Benefits.DentalInsurance,
		emp.Benefits.RetirementPlan, emp.Benefits.PaidTimeOff,
		emp.Bank.AccountNumber, emp.Bank.BankName, emp.Bank.RoutingNumber).
		Scan(scanTargets(&emp)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Employee{}, ErrEmployeeExists
			case "23503":
				return Employee{}, ErrDepartmentNotFound
			}
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id).
		Scan(scanTargets(&emp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email).
		Scan(scanTargets(&emp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Employee, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.DepartmentID != "" {
		where += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND is_active = $%d", len(args)+1)
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR employee_code ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + employeeColumns + " FROM employees" + where +
		fmt.Sprintf(" ORDER BY employee_code LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(scanTargets(&emp)...); err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, emp Employee) (Employee, error) {
	err := s.DB.QueryRow(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, email = $4, department_id = $5, position = $6,
        employment_type = $7, base_salary = $8, currency = $9, pay_frequency = $10,
        overtime_rate = $11, tax_rate = $12, tax_exemptions = $13,
        health_insurance = $14, dental_insurance = $15, retirement_plan = $16, paid_time_off = $17,
        bank_account_number = $18, bank_name = $19, bank_routing_number = $20,
        is_active = $21, updated_at = now()
    WHERE id = $1
    RETURNING `+employeeColumns+`
  `, emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.DepartmentID, emp.Position,
		emp.EmploymentType, emp.BaseSalary, emp.Currency, emp.PayFrequency,
		emp.OvertimeRate, emp.TaxRate, emp.TaxExemptions,
		emp.Benefits.HealthInsurance, emp.Benefits.DentalInsurance, emp.Benefits.RetirementPlan, emp.Benefits.PaidTimeOff,
		emp.Bank.AccountNumber, emp.Bank.BankName, emp.Bank.RoutingNumber,
		emp.IsActive).
		Scan(scanTargets(&emp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Employee{}, ErrEmployeeExists
			case "23503":
				return Employee{}, ErrDepartmentNotFound
			}
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) Terminate(ctx context.Context, id, reason string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    UPDATE employees
    SET is_active = FALSE, termination_date = now(), termination_reason = $2, updated_at = now()
    WHERE id = $1
    RETURNING `+employeeColumns+`
  `, id, reason).Scan(scanTargets(&emp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func scanTargets(emp *Employee) []any {
	return []any{
		&emp.ID, &emp.Code, &emp.FirstName, &emp.LastName, &emp.Email, &emp.DepartmentID, &emp.Position,
		&emp.EmploymentType, &emp.JoiningDate, &emp.BaseSalary, &emp.Currency, &emp.PayFrequency, &emp.OvertimeRate,
		&emp.TaxRate, &emp.TaxExemptions, &emp.Benefits.HealthInsurance, &emp.Benefits.DentalInsurance,
		&emp.Benefits.RetirementPlan, &emp.Benefits.PaidTimeOff,
		&emp.Bank.AccountNumber, &emp.Bank.BankName, &emp.Bank.RoutingNumber,
		&emp.IsActive, &emp.TerminatedAt, &emp.TerminationWhy, &emp.CreatedAt, &emp.UpdatedAt,
	}
}
