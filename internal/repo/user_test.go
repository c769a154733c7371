package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/models"
)

func TestUsers_CreateAndLookup(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	exists, err := r.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	u := seedUser(t, r, "alice", models.RoleAdmin)

	exists, err = r.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	id, err := r.UserIDByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = r.UserIDByUsername(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)

	err = r.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "y", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestRoleOf_FallsBackToUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "root", models.RoleAdmin)
	seedUser(t, r, "odd", models.Role("superuser"))

	tests := []struct {
		username string
		want     models.Role
	}{
		{username: "root", want: models.RoleAdmin},
		{username: "odd", want: models.RoleUser},
		{username: "ghost", want: models.RoleUser},
	}
	for _, tt := range tests {
		got, err := r.RoleOf(ctx, tt.username)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.username)
	}
}

func TestVerifyCredentials(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	digest, err := hash.HashPasswordWith("pw1", hash.Params{Memory: 8 * 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})
	require.NoError(t, err)
	require.NoError(t, r.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: digest, Role: models.RoleUser}))

	u, err := r.VerifyCredentials(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = r.VerifyCredentials(ctx, "alice", "wrongpw")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.VerifyCredentials(ctx, "bob", "pw1")
	require.ErrorIs(t, err, ErrUserNotFound)
}
