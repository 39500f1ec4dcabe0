package repository

import (
	"context"

	"gorm.io/gorm"

	"otoada_api_v1_202609/internal/model"
)

// AdminLogRepository 审核操作日志仓储
type AdminLogRepository interface {
	Create(ctx context.Context, entry *model.AdminActionLog) error
	ListRecent(ctx context.Context, limit int) ([]model.AdminActionLog, error)
	ListByCar(ctx context.Context, carID string) ([]model.AdminActionLog, error)
}

type adminLogRepo struct {
	db *gorm.DB
}

// NewAdminLogRepository 创建日志仓储
func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepo{db: db}
}

func (r *adminLogRepo) Create(ctx context.Context, entry *model.AdminActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminLogRepo) ListRecent(ctx context.Context, limit int) ([]model.AdminActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []model.AdminActionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *adminLogRepo) ListByCar(ctx context.Context, carID string) ([]model.AdminActionLog, error) {
	var logs []model.AdminActionLog
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
