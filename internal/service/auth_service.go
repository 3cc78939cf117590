package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookvault/internal/model"
	"bookvault/internal/repository"
	"bookvault/internal/utils"

	"github.com/patrickmn/go-cache"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*model.PublicUser, string, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtUtil    *utils.JWTUtil
	adminEmail string
	profiles   *cache.Cache
}

// NewAuthService creates a new AuthService. The cache is shared with the user
// service so credential changes can drop stale profile entries.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, adminEmail string, profiles *cache.Cache) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtUtil:    jwtUtil,
		adminEmail: adminEmail,
		profiles:   profiles,
	}
}

// Register creates a new user account with the default role. No token is
// issued; the client logs in afterwards.
func (s *authService) Register(ctx context.Context, name, email, password string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	}

	// The store's conditional write is the duplicate check; a separate
	// read-then-write would race.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user in repository: %w", err)
	}
	return nil
}

// Login authenticates a user and returns the public user view plus a JWT.
// The effective role is resolved server-side against the configured admin
// address, never taken from the stored record alone or from the client.
func (s *authService) Login(ctx context.Context, email, password string) (*model.PublicUser, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	role := ResolveRole(email, user.Role, s.adminEmail)

	token, err := s.jwtUtil.GenerateToken(email, role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.PublicUser{Name: user.Name, Email: user.Email, Role: role}, token, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *authService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("error finding user by email: %w", err)
	}

	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, email, hashedPassword); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.profiles.Delete(profileCacheKey(email))
	return nil
}

// DeleteAccount verifies the password and removes the user record.
func (s *authService) DeleteAccount(ctx context.Context, email, password string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("error finding user by email: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := s.userRepo.Delete(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.profiles.Delete(profileCacheKey(email))
	return nil
}
