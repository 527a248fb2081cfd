package repositories

import (
	"context"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/core/domain"
)

// UserStore is the local mirror of the remote user feed
type UserStore interface {
	Count(ctx context.Context) (int64, error)
	BulkReplace(ctx context.Context, records []domain.UserRecord) error
	GetByID(ctx context.Context, id string) (*domain.UserRecord, error)
	Scan(ctx context.Context, filter domain.Filter) ([]domain.UserRecord, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
	Ping(ctx context.Context) error
}

// AdminRepository defines admin repository interface
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAdminID(ctx context.Context, adminID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
