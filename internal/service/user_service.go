package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookvault/internal/model"
	"bookvault/internal/repository"

	"github.com/patrickmn/go-cache"
)

// ProfileCacheTTL bounds how long a profile read may serve a stale record.
// It is the default TTL of the cache constructed in main; entries are stored
// with the cache's default expiration so one knob controls the window.
const ProfileCacheTTL = 60 * time.Second

// UserService provides profile reads on top of the credential store.
type UserService interface {
	Profile(ctx context.Context, email string) (*model.PublicUser, error)
}

type userService struct {
	userRepo repository.UserRepository
	profiles *cache.Cache
}

// NewUserService creates a new UserService. The cache is constructed at
// process start and injected; it is not package state.
func NewUserService(userRepo repository.UserRepository, profiles *cache.Cache) UserService {
	return &userService{userRepo: userRepo, profiles: profiles}
}

func profileCacheKey(email string) string {
	return "user-" + email
}

// Profile returns the public view of a user, served from a short-TTL
// read-through cache to avoid duplicate store lookups in a small window.
func (s *userService) Profile(ctx context.Context, email string) (*model.PublicUser, error) {
	if cached, found := s.profiles.Get(profileCacheKey(email)); found {
		if user, ok := cached.(*model.PublicUser); ok {
			return user, nil
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	public := user.Public()
	s.profiles.Set(profileCacheKey(email), public, cache.DefaultExpiration)
	return public, nil
}
