package service

import (
	"context"
	"encoding/json"
	"log"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/pkg/kv"
)

// ==================== 收藏夹服务 ====================

// 收藏夹存储键前缀，按设备隔离
const favoritesKeyPrefix = "otoada:favorites:"

// FavoritesService 设备级收藏夹
// 收藏只认设备不认账号，存储值是 JSON 字符串数组 (车辆 ID 列表)
type FavoritesService struct {
	store   kv.Store
	carRepo repository.CarRepository
	catalog *CatalogService
}

// NewFavoritesService 创建收藏夹服务
func NewFavoritesService(store kv.Store, carRepo repository.CarRepository, catalog *CatalogService) *FavoritesService {
	return &FavoritesService{
		store:   store,
		carRepo: carRepo,
		catalog: catalog,
	}
}

// Favorites 读取设备的收藏 ID 列表
// 读坏了 (存储故障/脏数据) 按空列表处理，不报错
func (s *FavoritesService) Favorites(ctx context.Context, deviceID string) []string {
	raw, err := s.store.Get(ctx, favoritesKeyPrefix+deviceID)
	if err != nil {
		log.Printf("收藏夹读取失败 (device=%s): %v", deviceID, err)
		return nil
	}
	if raw == "" {
		return nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Printf("收藏夹数据损坏 (device=%s): %v", deviceID, err)
		return nil
	}
	return ids
}

// IsFavorite 是否已收藏
func (s *FavoritesService) IsFavorite(ctx context.Context, deviceID, carID string) bool {
	for _, id := range s.Favorites(ctx, deviceID) {
		if id == carID {
			return true
		}
	}
	return false
}

// Toggle 翻转收藏状态并同步落库，返回翻转后的状态
func (s *FavoritesService) Toggle(ctx context.Context, deviceID, carID string) (bool, error) {
	ids := s.Favorites(ctx, deviceID)

	found := false
	next := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if id == carID {
			found = true
			continue // 已收藏 -> 移除
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, carID)
	}

	raw, _ := json.Marshal(next)
	if err := s.store.Set(ctx, favoritesKeyPrefix+deviceID, string(raw)); err != nil {
		return found, err
	}
	return !found, nil
}

// ListCars 收藏页数据：in 查询取回收藏的车并归一化
func (s *FavoritesService) ListCars(ctx context.Context, deviceID string) ([]dto.CarView, error) {
	ids := s.Favorites(ctx, deviceID)
	if len(ids) == 0 {
		return []dto.CarView{}, nil
	}

	cars, err := s.carRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.catalog.NormalizeAll(cars), nil
}
