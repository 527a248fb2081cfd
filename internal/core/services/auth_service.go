package services

import (
	"context"
	"errors"
	"strings"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/pkg/jwt"
	"lendsqr-admin/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAdminInactive      = errors.New("admin account is inactive")
)

// AuthService handles dashboard operator authentication
type AuthService struct {
	adminRepo        repositories.AdminRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	logger           *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	adminRepo repositories.AdminRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:        adminRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		logger:           logger,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Admin        *models.AdminResponse `json:"admin"`
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
}

// Login authenticates an operator by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	if !password.Verify(input.Password, admin.Password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin logged in", zap.String("email", admin.Email))
	return resp, nil
}

// RefreshToken rotates a refresh token and returns a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// unknown or already revoked
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.AdminID != claims.AdminID {
		return nil, ErrInvalidToken
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	// rotation: the presented token is single use
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, admin)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Token refreshed", zap.Uint("admin_id", admin.ID))
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	s.logger.Info("Admin logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an operator
func (s *AuthService) LogoutAll(ctx context.Context, adminID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByAdminID(ctx, adminID); err != nil {
		return err
	}

	s.logger.Info("All sessions revoked", zap.Uint("admin_id", adminID))
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// IsAuthenticated reports whether the access token belongs to a signed-in operator
func (s *AuthService) IsAuthenticated(accessToken string) bool {
	if accessToken == "" {
		return false
	}
	_, err := s.ValidateAccessToken(accessToken)
	return err == nil
}

// GetAdminByID gets an operator by ID
func (s *AuthService) GetAdminByID(ctx context.Context, adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// CleanupExpiredTokens deletes expired refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx)
}

func (s *AuthService) issue(ctx context.Context, admin *models.Admin) (*AuthResponse, error) {
	tokens, err := s.generateTokens(admin)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, admin.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Admin:        admin.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(admin *models.Admin) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		admin.ID,
		admin.Email,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	// unique id so two refreshes in the same second hash differently
	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		admin.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, adminID uint, refreshToken string) error {
	token := &models.RefreshToken{
		AdminID:   adminID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
