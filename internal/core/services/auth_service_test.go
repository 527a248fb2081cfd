package services

import (
	"context"
	"testing"
	"time"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testEmail    = "admin@lendsqr.com"
	testPassword = "s3cret-pass"
)

func newAuth(t *testing.T) (*AuthService, *gorm.DB, *models.Admin) {
	t.Helper()
	password.Cost = bcrypt.MinCost
	db := newTestDB(t)

	hash, err := password.Hash(testPassword)
	require.NoError(t, err)
	admin := &models.Admin{Email: testEmail, Name: "Ops", Password: hash, IsActive: true}
	require.NoError(t, db.Create(admin).Error)

	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:           "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessTokenMins:  15,
		RefreshTokenDays: 7,
	}}

	svc := NewAuthService(
		repositories.NewAdminRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
		zap.NewNop(),
	)
	return svc, db, admin
}

func TestLogin(t *testing.T) {
	svc, _, admin := newAuth(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginInput{Email: " Admin@Lendsqr.com ", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.Admin.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, testEmail, claims.Email)
	assert.True(t, svc.IsAuthenticated(resp.AccessToken))
}

func TestLogin_Rejects(t *testing.T) {
	svc, db, admin := newAuth(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, &LoginInput{Email: testEmail, Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@lendsqr.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, db.Model(admin).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginInput{Email: testEmail, Password: testPassword})
	assert.ErrorIs(t, err, ErrAdminInactive)
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
	assert.True(t, svc.IsAuthenticated(rotated.AccessToken))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked, "a rotated token cannot be reused")

	_, err = svc.RefreshToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens are signed with a different secret")
}

func TestLogout(t *testing.T) {
	svc, _, admin := newAuth(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, &LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.RefreshToken))
	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, svc.LogoutAll(ctx, admin.ID))
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestIsAuthenticated(t *testing.T) {
	svc, _, _ := newAuth(t)

	assert.False(t, svc.IsAuthenticated(""))
	assert.False(t, svc.IsAuthenticated("garbage"))
}

func TestGetAdminByID(t *testing.T) {
	svc, _, admin := newAuth(t)
	ctx := context.Background()

	got, err := svc.GetAdminByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, testEmail, got.Email)

	_, err = svc.GetAdminByID(ctx, admin.ID+100)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, db, admin := newAuth(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, &LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	expired := &models.RefreshToken{AdminID: admin.ID, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(expired).Error)

	deleted, err := svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}
