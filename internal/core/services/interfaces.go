package services

import (
	"context"

	"lendsqr-admin/internal/core/domain"
)

// UserSource is the remote feed the directory mirrors
type UserSource interface {
	FetchAll(ctx context.Context) ([]domain.UserRecord, error)
}

// Refresher forces a directory refresh (used by the scheduler)
type Refresher interface {
	Refresh(ctx context.Context) error
}

// TokenCleaner removes expired sessions (used by the scheduler)
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
