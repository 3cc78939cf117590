package service

import (
	"context"
	"testing"
	"time"

	"bookvault/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["ada@x.com"] = &model.User{
		Email:        "ada@x.com",
		Name:         "Ada",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}

	profiles := cache.New(ProfileCacheTTL, time.Minute)
	svc := NewUserService(repo, profiles)

	user, err := svc.Profile(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@x.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestUserService_Profile_CachesSecondRead(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["ada@x.com"] = &model.User{Email: "ada@x.com", Name: "Ada", Role: model.RoleUser}

	profiles := cache.New(ProfileCacheTTL, time.Minute)
	svc := NewUserService(repo, profiles)

	_, err := svc.Profile(context.Background(), "ada@x.com")
	require.NoError(t, err)
	_, err = svc.Profile(context.Background(), "ada@x.com")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.findCalls)
}

func TestUserService_Profile_NotFound(t *testing.T) {
	repo := newFakeUserRepo()
	profiles := cache.New(ProfileCacheTTL, time.Minute)
	svc := NewUserService(repo, profiles)

	_, err := svc.Profile(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Profile_ExpiredEntryRefetches(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["ada@x.com"] = &model.User{Email: "ada@x.com", Name: "Ada", Role: model.RoleUser}

	profiles := cache.New(10*time.Millisecond, time.Minute)
	svc := NewUserService(repo, profiles)

	_, err := svc.Profile(context.Background(), "ada@x.com")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = svc.Profile(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findCalls)
}
