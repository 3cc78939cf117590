package repository

import (
	"context"
	"errors"

	"bookvault/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for the given email key.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when creating a record whose email key is taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// UserRepository defines operations for user records in the credential store.
// All operations address a single record by its email key; the underlying
// stores provide atomic per-key semantics, so no transactions are needed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	Delete(ctx context.Context, email string) error
	Ping(ctx context.Context) error
}
