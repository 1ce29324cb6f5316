package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) InsertDepartment(ctx context.Context, dept Department) (Department, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description)
    VALUES ($1, $2)
    RETURNING id, name, description, created_at, updated_at
  `, dept.Name, dept.Description).
		Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if isDeptUnique(err) {
			return Department{}, ErrDepartmentExists
		}
		return Department{}, err
	}
	return dept, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, created_at, updated_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) FindDepartment(ctx context.Context, id string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, created_at, updated_at
    FROM departments WHERE id = $1
  `, id).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, ErrDepartmentNotFound
		}
		return Department{}, err
	}
	return d, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, dept Department) (Department, error) {
	err := s.DB.QueryRow(ctx, `
    UPDATE departments
    SET name = $2, description = $3, updated_at = now()
    WHERE id = $1
    RETURNING id, name, description, created_at, updated_at
  `, dept.ID, dept.Name, dept.Description).
		Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, ErrDepartmentNotFound
		}
		if isDeptUnique(err) {
			return Department{}, ErrDepartmentExists
		}
		return Department{}, err
	}
	return dept, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrDepartmentInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func isDeptUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
