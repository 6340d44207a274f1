package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
)

const defaultSyncLogLimit = 50

// GormSyncLogRepository implements integration.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Save appends a sync log row
func (r *GormSyncLogRepository) Save(ctx context.Context, log *integration.SyncLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(models.SyncLogModelFromDomain(log)).Error
}

// FindByOrder returns the newest logs of an order first
func (r *GormSyncLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]integration.SyncLog, error) {
	if limit <= 0 {
		limit = defaultSyncLogLimit
	}

	var logModels []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]integration.SyncLog, len(logModels))
	for i := range logModels {
		logs[i] = logModels[i].ToDomain()
	}
	return logs, nil
}

// DeleteOlderThan removes log rows created before cutoff and reports how many went
func (r *GormSyncLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.SyncLogModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormSyncLogRepository implements integration.SyncLogRepository
var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)
