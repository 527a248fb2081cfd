package repositories

import (
	"context"
	"errors"
	"sync"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/core/domain"

	"gorm.io/gorm"
)

const bulkInsertBatchSize = 100

// userStore implements UserStore over gorm
type userStore struct {
	db *gorm.DB
	// serializes bulk replaces so concurrent refreshes resolve to last writer wins
	mu sync.Mutex
}

// NewUserStore creates the users mirror store
func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

// Count returns the number of mirrored records
func (s *userStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.UserRow{}).Count(&total).Error; err != nil {
		return 0, domain.StorageError("count", err)
	}
	return total, nil
}

// BulkReplace clears the table and inserts records in a single transaction.
// On failure the previous contents stay visible.
func (s *userStore) BulkReplace(ctx context.Context, records []domain.UserRecord) error {
	rows := make([]*models.UserRow, len(records))
	for i := range records {
		rows[i] = models.NewUserRow(&records[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, bulkInsertBatchSize).Error
	})
	if err != nil {
		return domain.StorageError("bulk replace", err)
	}
	return nil
}

// GetByID returns nil, nil when the id is unknown
func (s *userStore) GetByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	var row models.UserRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domain.StorageError("get by id", err)
	}
	user := row.ToDomain()
	return &user, nil
}

// Scan returns every record matching filter. Exact-match fields go through
// the organization/status indexes; the full predicate runs on each row.
func (s *userStore) Scan(ctx context.Context, filter domain.Filter) ([]domain.UserRecord, error) {
	query := s.db.WithContext(ctx).Model(&models.UserRow{})
	if filter.Organization != "" {
		query = query.Where("organization = ?", filter.Organization)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var rows []models.UserRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, domain.StorageError("scan", err)
	}

	users := make([]domain.UserRecord, 0, len(rows))
	for i := range rows {
		user := rows[i].ToDomain()
		if filter.Matches(&user) {
			users = append(users, user)
		}
	}
	return users, nil
}

// CountByStatus groups the mirror by status
func (s *userStore) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.UserRow{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StorageError("count by status", err)
	}

	counts := make(map[domain.Status]int64, len(domain.Statuses))
	for _, st := range domain.Statuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[domain.Status(r.Status)] = r.Total
	}
	return counts, nil
}

// Ping checks the underlying connection
func (s *userStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return domain.StorageError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return domain.StorageError("ping", err)
	}
	return nil
}
