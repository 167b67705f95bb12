package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobtracker-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, name, email, password_hash, is_verified, otp_code, otp_expires_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = NormalizeEmail(user.Email)
	const query = `
INSERT INTO users (id, name, email, password_hash, is_verified, otp_code, otp_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.OTPCode,
		user.OTPExpiresAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return User{}, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *PGRepo) Update(ctx context.Context, user User) (User, error) {
	user.Email = NormalizeEmail(user.Email)
	const query = `
UPDATE users SET
  name = $2,
  email = $3,
  password_hash = $4,
  is_verified = $5,
  otp_code = $6,
  otp_expires_at = $7,
  updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.OTPCode,
		user.OTPExpiresAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	return deleteUser(ctx, r.DB, userID)
}

// DeleteTx removes the user inside an existing transaction.
func (r *PGRepo) DeleteTx(ctx context.Context, tx *sql.Tx, userID string) error {
	return deleteUser(ctx, tx, userID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteUser(ctx context.Context, ex execer, userID string) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var otpCode sql.NullString
	var otpExpiresAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&otpCode,
		&otpExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	if otpCode.Valid {
		code := otpCode.String
		user.OTPCode = &code
	}
	if otpExpiresAt.Valid {
		exp := otpExpiresAt.Time.UTC()
		user.OTPExpiresAt = &exp
	}
	return user, nil
}
