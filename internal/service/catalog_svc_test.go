package service

import (
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/pkg/kv"
)

// ==================== 测试辅助 ====================

// newTestCatalog 兜底汇率下的目录服务 (1 TL = 0.024 STG, 1 EUR = 0.85 STG)
func newTestCatalog() *CatalogService {
	currency := NewCurrencyService(kv.NewMemoryStore(), resty.New())
	return NewCatalogService(currency)
}

// ==================== 归一化测试 ====================

func TestCatalogService_Normalize(t *testing.T) {
	svc := newTestCatalog()

	car := &model.Car{
		ID:         "car-1",
		Marka:      "BMW",
		Model:      "320i",
		Fiyat:      15000,
		ParaBirimi: "xyz", // 未识别币种
		Durum:      "",    // 空状态
		Images: []model.CarImage{
			// 乱序写入，首图应是 display_order 最小的一张
			{CarID: "car-1", ImageURL: "https://img/second.jpg", DisplayOrder: 1},
			{CarID: "car-1", ThumbnailURL: "https://img/first-thumb.jpg", DisplayOrder: 0},
		},
	}

	view := svc.Normalize(car)

	if view.Durum != model.CarStatusPending {
		t.Errorf("空状态归一化 Durum = %q, want %q", view.Durum, model.CarStatusPending)
	}
	if view.ParaBirimi != model.CurrencySTG {
		t.Errorf("未识别币种 ParaBirimi = %q, want STG", view.ParaBirimi)
	}
	// 首图：原图为空时用缩略图
	if view.ImageURL != "https://img/first-thumb.jpg" {
		t.Errorf("ImageURL = %q, want 缩略图兜底", view.ImageURL)
	}
	if len(view.Images) != 2 || view.Images[0].DisplayOrder != 0 {
		t.Errorf("图片应按 display_order 升序, got %+v", view.Images)
	}
	if view.FormattedPrice != "£15,000" {
		t.Errorf("FormattedPrice = %q, want £15,000", view.FormattedPrice)
	}
}

func TestCatalogService_Normalize_NoImages(t *testing.T) {
	svc := newTestCatalog()

	view := svc.Normalize(&model.Car{ID: "car-2", Marka: "Audi", Durum: model.CarStatusPublished})

	if view.ImageURL != "" {
		t.Errorf("无图车辆 ImageURL = %q, want 空", view.ImageURL)
	}
	if view.Durum != model.CarStatusPublished {
		t.Errorf("Durum = %q, want %q", view.Durum, model.CarStatusPublished)
	}
}

// ==================== 筛选测试 ====================

func filterFixture() []model.Car {
	return []model.Car{
		{ID: "a", Marka: "BMW", Model: "320i", Fiyat: 9000, ParaBirimi: "STG", Konum: "Lefkoşa", Yakit: "Benzin", Vites: "Otomatik"},
		{ID: "b", Marka: "BMW", Model: "520d", Fiyat: 600000, ParaBirimi: "TL", Konum: "Girne", Yakit: "Dizel", Vites: "Otomatik"},
		{ID: "c", Marka: "Audi", Model: "A4", Fiyat: 11000, ParaBirimi: "STG", Konum: "Lefkoşa", Yakit: "Benzin", Vites: "Manuel", Aciklama: "Temiz aile arabası"},
	}
}

func TestCatalogService_Filter_Search(t *testing.T) {
	svc := newTestCatalog()
	cars := filterFixture()

	// 大小写不敏感，命中品牌
	got := svc.Filter(cars, FilterCriteria{Search: "bmw"})
	if len(got) != 2 {
		t.Errorf("Search=bmw 命中 %d 条, want 2", len(got))
	}

	// 命中描述字段
	got = svc.Filter(cars, FilterCriteria{Search: "aile"})
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("Search=aile 应只命中 c, got %+v", got)
	}

	// 前后空白不影响
	got = svc.Filter(cars, FilterCriteria{Search: "  320I  "})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Search 应去除空白后匹配, got %+v", got)
	}
}

func TestCatalogService_Filter_PriceAcrossCurrencies(t *testing.T) {
	svc := newTestCatalog()
	cars := filterFixture()

	// BMW + 上限 12000 STG:
	//   a: 9000 STG 命中
	//   b: 600000 TL * 0.024 = 14400 STG 超限
	//   c: Audi 品牌不符
	got := svc.Filter(cars, FilterCriteria{
		Marka:    "BMW",
		Currency: "STG",
		MaxPrice: 12000,
	})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("应只剩 a, got %+v", got)
	}
}

func TestCatalogService_Filter_MaxPriceCeiling(t *testing.T) {
	svc := newTestCatalog()
	cars := []model.Car{
		{ID: "mid", Fiyat: 150000, ParaBirimi: "STG"},
		{ID: "over", Fiyat: 250001, ParaBirimi: "STG"},
	}

	// 不设上限时代入兜底上限，填 0 不能把所有车筛掉
	got := svc.Filter(cars, FilterCriteria{Currency: "STG", MaxPrice: 0})
	if len(got) != 1 || got[0].ID != "mid" {
		t.Errorf("不限价应代入上限 %d, got %+v", MaxPriceCeiling, got)
	}
}

func TestCatalogService_Filter_ExactDropdowns(t *testing.T) {
	svc := newTestCatalog()
	cars := filterFixture()

	tests := []struct {
		name     string
		criteria FilterCriteria
		wantIDs  []string
	}{
		{"按地区", FilterCriteria{Konum: "Lefkoşa"}, []string{"a", "c"}},
		{"按燃料", FilterCriteria{Yakit: "Dizel"}, []string{"b"}},
		{"按变速箱", FilterCriteria{Vites: "Manuel"}, []string{"c"}},
		// 下拉取值受控，刻意不做大小写归一
		{"品牌大小写不匹配", FilterCriteria{Marka: "bmw"}, nil},
		{"空条件放行全部", FilterCriteria{}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Filter(cars, tt.criteria)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("命中 %d 条, want %d", len(got), len(tt.wantIDs))
			}
			for i, car := range got {
				if car.ID != tt.wantIDs[i] {
					t.Errorf("got[%d].ID = %s, want %s", i, car.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestCatalogService_Filter_Idempotent(t *testing.T) {
	svc := newTestCatalog()
	cars := filterFixture()
	criteria := FilterCriteria{Marka: "BMW", Currency: "STG", MaxPrice: 20000}

	once := svc.Filter(cars, criteria)
	twice := svc.Filter(once, criteria)

	if len(once) != len(twice) {
		t.Errorf("同条件二次筛选结果应不变: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("二次筛选顺序应不变: got[%d] %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

// ==================== 状态分桶测试 ====================

func TestCatalogService_FilterByStatus(t *testing.T) {
	svc := newTestCatalog()
	cars := []model.Car{
		{ID: "p1", Durum: model.CarStatusPending},
		{ID: "p2", Durum: ""},          // 空状态算待审核
		{ID: "p3", Durum: "bilinmez"},  // 未识别状态也算待审核
		{ID: "y1", Durum: model.CarStatusPublished},
		{ID: "s1", Durum: model.CarStatusSold},
		{ID: "r1", Durum: model.CarStatusRejected},
	}

	tests := []struct {
		bucket string
		want   int
	}{
		{"pending", 3},
		{"published", 1},
		{"sold", 1},
		{"rejected", 1},
		{"all", 6},
		{"", 6},
		{"garbage", 6}, // 未识别分桶不筛
	}

	for _, tt := range tests {
		t.Run("bucket="+tt.bucket, func(t *testing.T) {
			got := svc.FilterByStatus(cars, tt.bucket)
			if len(got) != tt.want {
				t.Errorf("FilterByStatus(%q) = %d 条, want %d", tt.bucket, len(got), tt.want)
			}
		})
	}
}

// ==================== 排序测试 ====================

func TestCatalogService_SortNewestFirst(t *testing.T) {
	svc := newTestCatalog()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cars := []model.Car{
		{ID: "old", CreatedAt: base.Add(-48 * time.Hour)},
		{ID: "new", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(-24 * time.Hour)},
	}

	svc.SortNewestFirst(cars)

	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if cars[i].ID != id {
			t.Errorf("cars[%d].ID = %s, want %s", i, cars[i].ID, id)
		}
	}
}
