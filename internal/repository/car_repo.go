package repository

import (
	"context"

	"gorm.io/gorm"

	"otoada_api_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// CarRepository 车辆仓储接口
type CarRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, car *model.Car) error
	GetByID(ctx context.Context, id string) (*model.Car, error)
	Update(ctx context.Context, car *model.Car) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id string, durum string) error
	Delete(ctx context.Context, id string) error

	// 列表查询
	ListAll(ctx context.Context) ([]model.Car, error)
	ListByStatus(ctx context.Context, durum string) ([]model.Car, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Car, error)
	ListSimilar(ctx context.Context, marka, excludeID string, limit int) ([]model.Car, error)

	// 图片操作
	CreateImages(ctx context.Context, images []model.CarImage) error
	DeleteImagesByCarID(ctx context.Context, carID string) error

	// 事务
	WithTx(tx *gorm.DB) CarRepository
	Transaction(ctx context.Context, fn func(txRepo CarRepository) error) error
}

// ==================== 仓储实现 ====================

type carRepo struct {
	db *gorm.DB
}

// NewCarRepository 创建车辆仓储
func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepo{db: db}
}

// preloadImages 统一按 display_order 升序带出图片
func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC")
}

func (r *carRepo) Create(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepo) GetByID(ctx context.Context, id string) (*model.Car, error) {
	var car model.Car
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		First(&car, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepo) Update(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *carRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Car{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *carRepo) UpdateStatus(ctx context.Context, id string, durum string) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"durum": durum})
}

// Delete 物理删除 (审核后台的删除是破坏性操作，不走软删)
func (r *carRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Car{}, "id = ?", id).Error
}

func (r *carRepo) ListAll(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

func (r *carRepo) ListByStatus(ctx context.Context, durum string) ([]model.Car, error) {
	var cars []model.Car
	query := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Order("created_at DESC")

	// 待审核要把空状态也捞出来，历史数据里有 durum 为空的记录
	if durum == model.CarStatusPending {
		query = query.Where("durum = ? OR durum = '' OR durum IS NULL", durum)
	} else {
		query = query.Where("durum = ?", durum)
	}

	err := query.Find(&cars).Error
	return cars, err
}

func (r *carRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Car, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cars []model.Car
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

// ListSimilar 同品牌在售车辆 (详情页推荐位)，不足时退化为任意品牌
func (r *carRepo) ListSimilar(ctx context.Context, marka, excludeID string, limit int) ([]model.Car, error) {
	var cars []model.Car
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Where("durum = ? AND marka = ? AND id <> ?", model.CarStatusPublished, marka, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&cars).Error
	if err != nil {
		return nil, err
	}

	if len(cars) == 0 {
		// 同品牌没有别的车，放宽到全部在售
		err = r.db.WithContext(ctx).
			Preload("Images", preloadImages).
			Where("durum = ? AND id <> ?", model.CarStatusPublished, excludeID).
			Order("created_at DESC").
			Limit(limit).
			Find(&cars).Error
	}
	return cars, err
}

func (r *carRepo) CreateImages(ctx context.Context, images []model.CarImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *carRepo) DeleteImagesByCarID(ctx context.Context, carID string) error {
	return r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Delete(&model.CarImage{}).Error
}

func (r *carRepo) WithTx(tx *gorm.DB) CarRepository {
	return &carRepo{db: tx}
}

func (r *carRepo) Transaction(ctx context.Context, fn func(txRepo CarRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
