package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRejectsWrongCredentials(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, pair := range [][2]string{
		{testutil.AdminLogin, "wrong"},
		{"intruder", testutil.AdminPassword},
		{"", ""},
	} {
		token, _, err := f.services.Auth().Login(ctx, pair[0], pair[1])
		assert.ErrorIs(t, err, dto.ErrInvalidCredentials)
		assert.Empty(t, token)
	}

	users, err := f.repos.User().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, users)
}

func TestLoginIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, first, err := f.services.Auth().Login(ctx, testutil.AdminLogin, testutil.AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminLogin+"@admin.local", first.Email)
	assert.Equal(t, "System Administrator", *first.Name)
	assert.Equal(t, "ADMIN001", *first.StudentID)
	assert.True(t, first.IsAdmin)

	claims, err := client.NewJWTAuthClient(testutil.JWTSecret, time.Hour).VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claims.UserID)
	assert.Equal(t, first.Email, claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(f.cfg.TokenTTL), claims.ExpiresAt.Time, time.Minute)

	_, second, err := f.services.Auth().Login(ctx, testutil.AdminLogin, testutil.AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	users, err := f.repos.User().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)
}

func TestLoginWhenReservedStudentIDIsTaken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.repos, "voter@x.edu", "Voter", testutil.Ptr("ADMIN001"), false)

	_, admin, err := f.services.Auth().Login(ctx, testutil.AdminLogin, testutil.AdminPassword)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Nil(t, admin.StudentID)
}

func TestAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, admin, err := f.services.Auth().Login(ctx, testutil.AdminLogin, testutil.AdminPassword)
	require.NoError(t, err)

	user, err := f.services.Auth().Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)

	signer := client.NewJWTAuthClient(testutil.JWTSecret, time.Hour)
	voter := testutil.CreateUser(t, f.repos, "voter@x.edu", "Voter", testutil.Ptr("S1"), false)
	// Claims cannot grant privileges the stored user does not have.
	voterToken, err := signer.IssueToken(voter.ID, voter.Email, true)
	require.NoError(t, err)

	ghostToken, err := signer.IssueToken("ghost", "ghost@x.edu", true)
	require.NoError(t, err)

	expiredToken, err := client.NewJWTAuthClient(testutil.JWTSecret, -time.Minute).IssueToken(admin.ID, admin.Email, true)
	require.NoError(t, err)

	forgedToken, err := client.NewJWTAuthClient("another-secret", time.Hour).IssueToken(admin.ID, admin.Email, true)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", dto.ErrNotAuthorized},
		{"malformed", "abc.def", dto.ErrNotAuthorized},
		{"expired", expiredToken, dto.ErrNotAuthorized},
		{"forged", forgedToken, dto.ErrNotAuthorized},
		{"unknown subject", ghostToken, dto.ErrNotAuthorized},
		{"not an admin", voterToken, dto.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Auth().Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
