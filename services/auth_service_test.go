package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcraft/models"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), "test-secret", time.Hour, []string{" Boss@Example.com "})
}

func TestRegisterAssignsRoles(t *testing.T) {
	auth := newAuthService(t)

	resp, err := auth.Register(&RegisterRequest{Email: "player@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "secret1", resp.User.PasswordHash)

	resp, err = auth.Register(&RegisterRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	_, err = auth.Register(&RegisterRequest{Email: "PLAYER@example.com", Password: "another"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginAndAuthenticate(t *testing.T) {
	auth := newAuthService(t)
	registered, err := auth.Register(&RegisterRequest{Email: "player@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.Login(&LoginRequest{Email: "player@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login(&LoginRequest{Email: "Player@Example.com", Password: "secret1"})
	require.NoError(t, err)

	actor, err := auth.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, actor.UserID)
	assert.Equal(t, models.RoleUser, actor.Role)

	_, err = auth.Authenticate(resp.Token + "x")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateRejectsExpiredAndForeignTokens(t *testing.T) {
	auth := newAuthService(t)
	resp, err := auth.Register(&RegisterRequest{Email: "player@example.com", Password: "secret1"})
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.Authenticate(resp.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	auth.now = time.Now
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: resp.User.ID, Role: models.RoleAdmin}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = auth.Authenticate(forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRoleChangesApplyToExistingTokens(t *testing.T) {
	auth := newAuthService(t)
	boss, err := auth.Register(&RegisterRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)
	player, err := auth.Register(&RegisterRequest{Email: "player@example.com", Password: "secret1"})
	require.NoError(t, err)

	bossActor, err := auth.Authenticate(boss.Token)
	require.NoError(t, err)
	playerActor, err := auth.Authenticate(player.Token)
	require.NoError(t, err)

	_, err = auth.SetRole(playerActor, boss.User.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = auth.SetRole(bossActor, player.User.ID, "owner")
	assert.Error(t, err)

	updated, err := auth.SetRole(bossActor, player.User.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	refreshed, err := auth.Authenticate(player.Token)
	require.NoError(t, err)
	assert.True(t, refreshed.IsAdmin())

	users, err := auth.ListUsers(refreshed)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = auth.SetRole(bossActor, 999, models.RoleUser)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
