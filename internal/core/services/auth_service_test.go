package services

import (
	"context"
	"testing"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/config"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserPassword = "correct-horse-9"

func newAuthTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeRefreshTokenRepo, *models.User) {
	t.Helper()

	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	hashed, err := password.Hash(testUserPassword)
	require.NoError(t, err)

	user := userRepo.add(&models.User{
		FirstName: "Anna",
		LastName:  "Fischer",
		Email:     "anna@example.com",
		Password:  hashed,
		Role:      domain.RoleSalesRep,
		Status:    domain.UserActive,
	})

	svc := NewAuthService(userRepo, tokenRepo, cfg, testLogger())
	return svc, userRepo, tokenRepo, user
}

func login(svc *AuthService, email, pass string) (*AuthResponse, error) {
	return svc.Login(context.Background(), &LoginInput{
		Email:    email,
		Password: pass,
		IP:       "203.0.113.7",
	})
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, _, user := newAuthTestService(t)

	resp, err := login(svc, user.Email, testUserPassword)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.Email, resp.User.Email)
	assert.Contains(t, resp.User.Authorities, "ROLE_SALES_REP")

	stored := userRepo.users[user.ID]
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, "203.0.113.7", stored.LastLoginIP)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _, user := newAuthTestService(t)

	_, err := login(svc, user.Email, "wrong-password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, 1, userRepo.users[user.ID].FailedLoginAttempts)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t)

	// Unknown accounts answer exactly like a wrong password
	_, err := login(svc, "nobody@example.com", "whatever-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LocksAfterMaxFailures(t *testing.T) {
	svc, userRepo, _, user := newAuthTestService(t)

	for i := 0; i < models.MaxFailedLogins; i++ {
		_, err := login(svc, user.Email, "wrong-password-1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	stored := userRepo.users[user.ID]
	assert.Equal(t, models.MaxFailedLogins, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)
	assert.True(t, stored.IsLocked())

	// Even the correct password is rejected while locked, with the same error
	_, err := login(svc, user.Email, testUserPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LockExpiresOnItsOwn(t *testing.T) {
	svc, userRepo, _, user := newAuthTestService(t)

	past := time.Now().Add(-time.Minute)
	userRepo.users[user.ID].FailedLoginAttempts = models.MaxFailedLogins
	userRepo.users[user.ID].LockedUntil = &past

	resp, err := login(svc, user.Email, testUserPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Success resets the counter and clears the stale lock
	stored := userRepo.users[user.ID]
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, userRepo, _, user := newAuthTestService(t)

	userRepo.users[user.ID].Status = domain.UserInactive

	_, err := login(svc, user.Email, testUserPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken_RotatesToken(t *testing.T) {
	svc, _, tokenRepo, user := newAuthTestService(t)

	first, err := login(svc, user.Email, testUserPassword)
	require.NoError(t, err)

	second, err := svc.RefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old token was revoked by the rotation
	oldHash := password.HashToken(first.RefreshToken)
	assert.True(t, tokenRepo.tokens[oldHash].IsRevoked())

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, tokenRepo, user := newAuthTestService(t)

	resp, err := login(svc, user.Email, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.RefreshToken))

	hash := password.HashToken(resp.RefreshToken)
	assert.True(t, tokenRepo.tokens[hash].IsRevoked())
}

func TestChangePassword(t *testing.T) {
	svc, userRepo, tokenRepo, user := newAuthTestService(t)

	resp, err := login(svc, user.Email, testUserPassword)
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "nope-nope-1", "new-password-1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, testUserPassword, "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("success revokes sessions", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, testUserPassword, "new-password-1")
		require.NoError(t, err)

		assert.True(t, password.Verify("new-password-1", userRepo.users[user.ID].Password))
		require.NotNil(t, userRepo.users[user.ID].PasswordChangedAt)

		hash := password.HashToken(resp.RefreshToken)
		assert.True(t, tokenRepo.tokens[hash].IsRevoked())
	})
}
