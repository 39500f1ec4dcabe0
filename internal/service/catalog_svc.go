package service

import (
	"sort"
	"strings"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
)

// ==================== 目录引擎 ====================

// MaxPriceCeiling 价格上限 (表示"不限价"的兜底值，按筛选币种计)
// 不设上限时必须替换成这个值，填 0 会把所有车都筛掉
const MaxPriceCeiling = 200000

// FilterCriteria 筛选条件
// 下拉类条件为空串表示"全部"；Min/MaxPrice 以 Currency 计价
type FilterCriteria struct {
	Search string // 关键词，大小写不敏感的子串匹配
	Marka  string // 品牌，精确匹配 (下拉框取值是受控的，刻意不做大小写归一)
	Konum  string
	Yakit  string
	Vites  string

	Currency string  // 价格区间的计价币种
	MinPrice float64
	MaxPrice float64 // <= 0 视为不限，代入 MaxPriceCeiling
}

// CatalogService 刊登目录引擎
// 归一化、多条件筛选、排序；只做纯数据转换，不碰渲染
type CatalogService struct {
	currency *CurrencyService
}

// NewCatalogService 创建目录服务
func NewCatalogService(currency *CurrencyService) *CatalogService {
	return &CatalogService{currency: currency}
}

// ==================== 归一化 ====================

// Normalize 存储行 -> 规范视图
// 纯函数且永不失败：缺失字段落到零值，图片按 display_order 升序
func (s *CatalogService) Normalize(car *model.Car) dto.CarView {
	images := make([]model.CarImage, len(car.Images))
	copy(images, car.Images)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})

	view := dto.CarView{
		ID:        car.ID,
		CreatedAt: car.CreatedAt,

		Marka:      car.Marka,
		Model:      car.Model,
		Fiyat:      car.Fiyat,
		ParaBirimi: normalizeCurrency(car.ParaBirimi),
		Durum:      car.NormalizedStatus(),

		Yil:       car.Yil,
		KM:        car.KM,
		Yakit:     car.Yakit,
		Vites:     car.Vites,
		KasaTipi:  car.KasaTipi,
		Renk:      car.Renk,
		Konum:     car.Konum,
		Aciklama:  car.Aciklama,
		Satici:    car.Satici,
		Telefon:   car.Telefon,
		Ekspertiz: car.Ekspertiz,

		FormattedPrice: FormatPrice(car.Fiyat, car.ParaBirimi),
	}

	for _, img := range images {
		view.Images = append(view.Images, dto.CarImageView{
			URL:          img.ImageURL,
			ThumbnailURL: img.ThumbnailURL,
			DisplayOrder: img.DisplayOrder,
		})
	}

	// 首图：排序后的第一张，优先原图，其次缩略图
	if len(images) > 0 {
		if images[0].ImageURL != "" {
			view.ImageURL = images[0].ImageURL
		} else {
			view.ImageURL = images[0].ThumbnailURL
		}
	}

	return view
}

// NormalizeAll 批量归一化，保持输入顺序
func (s *CatalogService) NormalizeAll(cars []model.Car) []dto.CarView {
	views := make([]dto.CarView, 0, len(cars))
	for i := range cars {
		views = append(views, s.Normalize(&cars[i]))
	}
	return views
}

// normalizeCurrency 未识别币种一律按 STG
func normalizeCurrency(code string) string {
	switch strings.ToUpper(code) {
	case model.CurrencyTL:
		return model.CurrencyTL
	case model.CurrencyEUR:
		return model.CurrencyEUR
	default:
		return model.CurrencySTG
	}
}

// ==================== 筛选 ====================

// Filter 多条件筛选，全部条件 AND，保持集合原有顺序
func (s *CatalogService) Filter(cars []model.Car, c FilterCriteria) []model.Car {
	searchTerm := strings.ToLower(strings.TrimSpace(c.Search))

	// 价格区间换算到 STG，车价也换算到 STG 后比较
	maxPrice := c.MaxPrice
	if maxPrice <= 0 {
		maxPrice = MaxPriceCeiling
	}
	minSTG := s.currency.ConvertToSTG(c.MinPrice, c.Currency)
	maxSTG := s.currency.ConvertToSTG(maxPrice, c.Currency)

	var result []model.Car
	for _, car := range cars {
		// 1. 关键词：品牌/车型/描述 任意命中即可
		if searchTerm != "" {
			matches := strings.Contains(strings.ToLower(car.Marka), searchTerm) ||
				strings.Contains(strings.ToLower(car.Model), searchTerm) ||
				strings.Contains(strings.ToLower(car.Aciklama), searchTerm)
			if !matches {
				continue
			}
		}

		// 2. 品牌精确匹配
		if c.Marka != "" && car.Marka != c.Marka {
			continue
		}

		// 3. 价格区间 (闭区间，STG 口径)
		priceSTG := s.currency.ConvertToSTG(car.Fiyat, car.ParaBirimi)
		if priceSTG < minSTG || priceSTG > maxSTG {
			continue
		}

		// 4-6. 地区 / 燃料 / 变速箱 精确匹配
		if c.Konum != "" && car.Konum != c.Konum {
			continue
		}
		if c.Yakit != "" && car.Yakit != c.Yakit {
			continue
		}
		if c.Vites != "" && car.Vites != c.Vites {
			continue
		}

		result = append(result, car)
	}
	return result
}

// FilterByStatus 按审核状态分桶 (后台侧边栏)
// bucket: pending / published / sold / rejected / all
func (s *CatalogService) FilterByStatus(cars []model.Car, bucket string) []model.Car {
	if bucket == "" || bucket == "all" {
		return cars
	}

	want := ""
	switch bucket {
	case "pending":
		want = model.CarStatusPending
	case "published":
		want = model.CarStatusPublished
	case "sold":
		want = model.CarStatusSold
	case "rejected":
		want = model.CarStatusRejected
	default:
		return cars
	}

	var result []model.Car
	for _, car := range cars {
		// NormalizedStatus 把空/未识别状态折算成待审核
		if car.NormalizedStatus() == want {
			result = append(result, car)
		}
	}
	return result
}

// SortNewestFirst 默认排序：创建时间倒序
func (s *CatalogService) SortNewestFirst(cars []model.Car) {
	sort.SliceStable(cars, func(i, j int) bool {
		return cars[i].CreatedAt.After(cars[j].CreatedAt)
	})
}
