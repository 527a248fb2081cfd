package models

import (
	"time"

	"lendsqr-admin/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Dashboard admins & sessions
// ============================================================

// Admin represents admins table (dashboard operators)
type Admin struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Name      string         `gorm:"size:100" json:"name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

// AdminResponse DTO
type AdminResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Admin) ToResponse() *AdminResponse {
	return &AdminResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AdminID   uint       `gorm:"index;not null" json:"admin_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Admin     Admin      `gorm:"foreignKey:AdminID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// User directory mirror
// ============================================================

// UserRow represents the users table, a full mirror of the remote feed.
// Summary fields are flattened into columns; nested records are stored as JSON.
type UserRow struct {
	ID           string            `gorm:"primaryKey;size:64"`
	Organization string            `gorm:"index;size:100"`
	Status       string            `gorm:"index;size:20"`
	Username     string            `gorm:"size:100"`
	Email        string            `gorm:"size:150"`
	PhoneNumber  string            `gorm:"size:40"`
	DateJoined   string            `gorm:"size:40"`
	Profile      domain.Profile    `gorm:"type:text;serializer:json"`
	Account      domain.Account    `gorm:"type:text;serializer:json"`
	Education    domain.Education  `gorm:"type:text;serializer:json"`
	Socials      domain.Socials    `gorm:"type:text;serializer:json"`
	Guarantors   domain.Guarantors `gorm:"type:text;serializer:json"`
}

func (UserRow) TableName() string {
	return "users"
}

// NewUserRow flattens a domain record into its row form
func NewUserRow(u *domain.UserRecord) *UserRow {
	return &UserRow{
		ID:           u.ID,
		Organization: u.Organization,
		Status:       string(u.Status),
		Username:     u.Profile.Username,
		Email:        u.Profile.Email,
		PhoneNumber:  u.Profile.PhoneNumber,
		DateJoined:   u.DateJoined,
		Profile:      u.Profile,
		Account:      u.Account,
		Education:    u.Education,
		Socials:      u.Socials,
		Guarantors:   u.Guarantors,
	}
}

// ToDomain rebuilds the domain record
func (r *UserRow) ToDomain() domain.UserRecord {
	guarantors := r.Guarantors
	if guarantors == nil {
		guarantors = domain.Guarantors{}
	}
	return domain.UserRecord{
		ID:           r.ID,
		Organization: r.Organization,
		Status:       domain.Status(r.Status),
		DateJoined:   r.DateJoined,
		Profile:      r.Profile,
		Account:      r.Account,
		Education:    r.Education,
		Socials:      r.Socials,
		Guarantors:   guarantors,
	}
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&RefreshToken{},
		&UserRow{},
	)
}
