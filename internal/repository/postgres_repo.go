package repository

import (
	"context"
	"errors"
	"fmt"

	"bookvault/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool the repository needs. Narrowed to an
// interface so tests can use pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresUserRepository struct {
	db PgxPool
}

// NewPostgresUserRepository creates a UserRepository backed by Postgres,
// the alternate store driver for deployments without DynamoDB.
func NewPostgresUserRepository(db PgxPool) UserRepository {
	return &postgresUserRepository{db: db}
}

// Create inserts a new user row, failing with ErrAlreadyExists when the email
// primary key is taken.
func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (email, name, password_hash, role, created_at)
            VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, sql, user.Email, user.Name, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email
func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT email, name, password_hash, role, created_at FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, sql, email).Scan(&user.Email, &user.Name, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash for an existing user.
func (r *postgresUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	sql := `UPDATE users SET password_hash = $1 WHERE email = $2`
	tag, err := r.db.Exec(ctx, sql, passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user row for the given email.
func (r *postgresUserRepository) Delete(ctx context.Context, email string) error {
	sql := `DELETE FROM users WHERE email = $1`
	tag, err := r.db.Exec(ctx, sql, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (r *postgresUserRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
