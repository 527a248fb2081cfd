package config

import (
	"fmt"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db     *gorm.DB
	admin  AdminConfig
	logger *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminConfig, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, admin: admin, logger: logger}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	if err := s.seedAdmin(); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// seedAdmin creates the configured dashboard operator if missing.
// Skipped when ADMIN_EMAIL or ADMIN_PASSWORD is unset.
func (s *Seeder) seedAdmin() error {
	if s.admin.Email == "" || s.admin.Password == "" {
		s.logger.Warn("Skipping admin seed: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	var count int64
	if err := s.db.Model(&models.Admin{}).Where("email = ?", s.admin.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if !password.ValidatePassword(s.admin.Password) {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Email:    s.admin.Email,
		Name:     s.admin.Name,
		Password: hashedPassword,
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	s.logger.Info("Admin account created", zap.String("email", admin.Email))
	return nil
}
