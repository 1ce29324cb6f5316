package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, role, permissions, is_active, last_login_at, COALESCE(created_by::text, ''), created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, user User, passwordHash string) (User, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, email, password_hash, role, permissions, is_active, created_by)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
    RETURNING `+userColumns+`
  `, user.Username, user.Email, passwordHash, user.Role, user.Permissions, user.IsActive, user.CreatedBy).
		Scan(scanTargets(&user)...)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return user, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(scanTargets(&user)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return user, nil
}

// FindByLogin resolves a user by username or email and returns the
// stored password hash alongside.
func (s *Store) FindByLogin(ctx context.Context, login string) (User, string, error) {
	var user User
	var hash string
	targets := append(scanTargets(&user), &hash)
	err := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`, password_hash
    FROM users
    WHERE username = $1 OR email = lower($1)
  `, login).Scan(targets...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, "", ErrUserNotFound
		}
		return User{}, "", err
	}
	return user, hash, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(scanTargets(&user)...); err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable profile fields. The permission set is
// always written in full; a role change therefore replaces, never
// merges, whatever was granted before.
func (s *Store) Update(ctx context.Context, user User) (User, error) {
	err := s.DB.QueryRow(ctx, `
    UPDATE users
    SET username = $2, email = $3, role = $4, permissions = $5, is_active = $6, updated_at = now()
    WHERE id = $1
    RETURNING `+userColumns+`
  `, user.ID, user.Username, user.Email, user.Role, user.Permissions, user.IsActive).
		Scan(scanTargets(&user)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return user, nil
}

func (s *Store) SetPermissions(ctx context.Context, id string, perms []string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET permissions = $2, updated_at = now() WHERE id = $1
  `, id, perms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
  `, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) CountByUsername(ctx context.Context, username string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM users WHERE username = $1`, username).Scan(&count)
	return count, err
}

func scanTargets(user *User) []any {
	return []any{
		&user.ID, &user.Username, &user.Email, &user.Role, &user.Permissions,
		&user.IsActive, &user.LastLoginAt, &user.CreatedBy, &user.CreatedAt, &user.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
