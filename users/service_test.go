package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage/memory"
)

func TestGetUserProfile(t *testing.T) {
	store := memory.New()
	u, err := store.CreateUser(context.Background(), &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	svc := NewUserService(store)

	profile, err := svc.GetUserProfile(context.Background(), u.ID)

	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestGetUserProfileMissing(t *testing.T) {
	svc := NewUserService(memory.New())

	_, err := svc.GetUserProfile(context.Background(), "5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.GetUserProfile(context.Background(), "not-a-uuid")
	assert.True(t, apperror.IsNotFound(err))
}

func TestListUsersOldestFirst(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := store.CreateUser(ctx, &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
	}

	list, err := NewUserService(store).ListUsers(ctx)

	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{list[0].Username, list[1].Username, list[2].Username})
}
