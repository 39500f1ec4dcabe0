package service

import (
	"context"
	"testing"

	"github.com/go-resty/resty/v2"

	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/pkg/kv"
)

// ==================== 测试辅助 ====================

func newTestFavorites(t *testing.T) (*FavoritesService, *kv.MemoryStore) {
	db := setupTestDB(t)
	store := kv.NewMemoryStore()
	currency := NewCurrencyService(kv.NewMemoryStore(), resty.New())
	svc := NewFavoritesService(store, repository.NewCarRepository(db), NewCatalogService(currency))
	return svc, store
}

// ==================== Toggle 测试 ====================

func TestFavoritesService_Toggle(t *testing.T) {
	svc, _ := newTestFavorites(t)
	ctx := context.Background()

	// 第一次翻转：收藏
	on, err := svc.Toggle(ctx, "device-1", "car-a")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !on {
		t.Error("第一次翻转应为已收藏")
	}
	if !svc.IsFavorite(ctx, "device-1", "car-a") {
		t.Error("IsFavorite 应为 true")
	}

	// 第二次翻转：取消，回到初始状态
	on, err = svc.Toggle(ctx, "device-1", "car-a")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if on {
		t.Error("第二次翻转应为未收藏")
	}
	if svc.IsFavorite(ctx, "device-1", "car-a") {
		t.Error("两次翻转后 IsFavorite 应为 false")
	}
	if ids := svc.Favorites(ctx, "device-1"); len(ids) != 0 {
		t.Errorf("两次翻转后列表应为空, got %v", ids)
	}
}

func TestFavoritesService_Toggle_PreservesOthers(t *testing.T) {
	svc, _ := newTestFavorites(t)
	ctx := context.Background()

	_, _ = svc.Toggle(ctx, "device-1", "car-a")
	_, _ = svc.Toggle(ctx, "device-1", "car-b")
	_, _ = svc.Toggle(ctx, "device-1", "car-a") // 取消 a

	ids := svc.Favorites(ctx, "device-1")
	if len(ids) != 1 || ids[0] != "car-b" {
		t.Errorf("取消 a 不应影响 b, got %v", ids)
	}
}

func TestFavoritesService_DeviceIsolation(t *testing.T) {
	svc, _ := newTestFavorites(t)
	ctx := context.Background()

	_, _ = svc.Toggle(ctx, "device-1", "car-a")

	// 收藏只认设备，另一台设备看不到
	if svc.IsFavorite(ctx, "device-2", "car-a") {
		t.Error("设备间收藏不应互通")
	}
}

// ==================== 脏数据测试 ====================

func TestFavoritesService_CorruptDataTreatedAsEmpty(t *testing.T) {
	svc, store := newTestFavorites(t)
	ctx := context.Background()

	// 存储里被写进了非 JSON 内容
	_ = store.Set(ctx, favoritesKeyPrefix+"device-1", "{{{not json")

	if ids := svc.Favorites(ctx, "device-1"); len(ids) != 0 {
		t.Errorf("脏数据应按空列表处理, got %v", ids)
	}

	// 翻转照常可用，相当于从空列表重建
	on, err := svc.Toggle(ctx, "device-1", "car-a")
	if err != nil || !on {
		t.Errorf("脏数据后 Toggle = (%v, %v), want (true, nil)", on, err)
	}
}

// ==================== 收藏页测试 ====================

func TestFavoritesService_ListCars(t *testing.T) {
	db := setupTestDB(t)
	store := kv.NewMemoryStore()
	currency := NewCurrencyService(kv.NewMemoryStore(), resty.New())
	svc := NewFavoritesService(store, repository.NewCarRepository(db), NewCatalogService(currency))
	ctx := context.Background()

	car := &model.Car{Marka: "BMW", Model: "320i", Fiyat: 15000, ParaBirimi: "STG", Durum: model.CarStatusPublished}
	if err := db.Create(car).Error; err != nil {
		t.Fatalf("创建测试车辆失败: %v", err)
	}
	db.Create(&model.Car{Marka: "Audi", Model: "A4", Fiyat: 11000, ParaBirimi: "STG"})

	if _, err := svc.Toggle(ctx, "device-1", car.ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	views, err := svc.ListCars(ctx, "device-1")
	if err != nil {
		t.Fatalf("ListCars() error = %v", err)
	}
	if len(views) != 1 || views[0].ID != car.ID {
		t.Fatalf("收藏页应只含收藏的车, got %+v", views)
	}
	// 出参是归一化后的视图
	if views[0].FormattedPrice != "£15,000" {
		t.Errorf("FormattedPrice = %q, want £15,000", views[0].FormattedPrice)
	}
}

func TestFavoritesService_ListCars_Empty(t *testing.T) {
	svc, _ := newTestFavorites(t)

	views, err := svc.ListCars(context.Background(), "device-9")
	if err != nil {
		t.Fatalf("ListCars() error = %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("无收藏应返回空切片而非 nil, got %v", views)
	}
}
